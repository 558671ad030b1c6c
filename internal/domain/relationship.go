package domain

import "time"

// Follow is a directed follow edge
type Follow struct {
	FollowerID string    `gorm:"column:follower_id;primaryKey;type:char(36)" json:"follower_id"`
	FolloweeID string    `gorm:"column:followee_id;primaryKey;type:char(36);index" json:"followee_id"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}

// Block is a directed block edge. Creating one severs the follow
// edges in both directions and makes content mutually invisible.
type Block struct {
	BlockerID string    `gorm:"column:blocker_id;primaryKey;type:char(36)" json:"blocker_id"`
	BlockedID string    `gorm:"column:blocked_id;primaryKey;type:char(36);index" json:"blocked_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Block) TableName() string {
	return "blocks"
}

// Mute is a directed mute edge. Only the muter's view is affected;
// follow edges and profile visibility stay intact.
type Mute struct {
	MuterID   string    `gorm:"column:muter_id;primaryKey;type:char(36)" json:"muter_id"`
	MutedID   string    `gorm:"column:muted_id;primaryKey;type:char(36);index" json:"muted_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Mute) TableName() string {
	return "mutes"
}

// PostMention is the derived mention association for a post. The set
// is fully replaced on every edit; the diff of newly added rows is
// what drives mention fan-out.
type PostMention struct {
	PostID    string    `gorm:"column:post_id;primaryKey;type:char(36)" json:"post_id"`
	UserID    string    `gorm:"column:user_id;primaryKey;type:char(36);index" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PostMention) TableName() string {
	return "post_mentions"
}

// PostRef carries the post fields the fan-out engine needs. Post
// storage itself belongs to the content service; only the derived
// mention set and notifications are owned here.
type PostRef struct {
	ID              string  `json:"id"`
	AuthorID        string  `json:"author_id"`
	Text            string  `json:"text"`
	ReplyToAuthorID *string `json:"reply_to_author_id,omitempty"`
	QuotedAuthorID  *string `json:"quoted_author_id,omitempty"`
}
