package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"password" json:"-"`
	Following    []primitive.ObjectID `bson:"following" json:"following"`
	Followers    []primitive.ObjectID `bson:"followers" json:"followers"`
}

// IsFollowing reports whether u follows the user with the given id.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}

// UserSummary is the public projection of a user used in listings.
type UserSummary struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
}

// UnknownUsername labels references to users that no longer resolve.
const UnknownUsername = "Unknown"

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username}
}
