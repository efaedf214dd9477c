// Package types
package types

// User is a registered identity keyed by wallet address.
type User struct {
	ID        string `json:"id" bson:"_id,omitempty"`
	Address   string `json:"address" bson:"address"`
	Name      string `json:"name" bson:"name"`
	CreatedAt int64  `json:"createdAt" bson:"createdAt"`
}
