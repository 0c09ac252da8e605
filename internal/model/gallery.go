package model

import "time"

// GalleryImage is a photo shown on an event's gallery page.  EventID is a
// free-form grouping key; Order sequences images within the group and is
// never renumbered, so gaps after deletions are expected.
type GalleryImage struct {
	ID        string    `db:"id" json:"id"`
	EventID   string    `db:"event_id" json:"eventId"`
	ImageURL  string    `db:"image_url" json:"imageUrl"`
	Caption   *string   `db:"caption" json:"caption"`
	Order     int       `db:"sort_order" json:"order"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// AboutImageID is the fixed primary key of the single about-section row.
const AboutImageID = "about"

// AboutImage is the founder photo on the homepage about section.  At most
// one row exists, keyed by AboutImageID.
type AboutImage struct {
	ID        string    `db:"id" json:"id"`
	ImageURL  string    `db:"image_url" json:"imageUrl"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
