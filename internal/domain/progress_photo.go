package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressPhoto stores metadata about a member's progress picture. The actual
// file resides in S3; the API hands out presigned upload/download URLs.
type ProgressPhoto struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID    primitive.ObjectID `bson:"member" json:"member"`
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"` // Internal bucket key
	FileName    string             `bson:"fileName" json:"fileName"`
	ContentType string             `bson:"contentType" json:"contentType"` // e.g. "image/jpeg"
	TakenAt     time.Time          `bson:"takenAt" json:"takenAt"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
