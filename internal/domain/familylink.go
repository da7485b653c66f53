package domain

import "time"

// FamilyLink is the ownership edge between a parent and a child identity,
// created when a child redeems a provisioning code. Reset operations are
// scoped by it: a parent may only act on children linked to them.
// PK: parent_id, SK: child_id.
type FamilyLink struct {
	ParentID  string    `json:"parent_id" dynamodbav:"parent_id"`
	ChildID   string    `json:"child_id" dynamodbav:"child_id"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}
