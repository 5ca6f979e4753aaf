package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	CategoryPlastic Category = "Plastic"
	CategoryOrganic Category = "Organic"
	CategoryMetal   Category = "Metal"
	CategoryPaper   Category = "Paper"
	CategoryGlass   Category = "Glass"
	CategoryEwaste  Category = "Ewaste"
	CategoryTextile Category = "Textile"
	CategoryOther   Category = "Other"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryPlastic, CategoryOrganic, CategoryMetal, CategoryPaper,
	CategoryGlass, CategoryEwaste, CategoryTextile, CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Display layouts captured on an entry when it is recorded.
const (
	DisplayDateLayout = "02/01/2006"
	DisplayTimeLayout = "15:04"
	// DayKeyLayout keys per-day aggregates; it sorts chronologically.
	DayKeyLayout = "2006-01-02"
)

type WasteEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Location    string             `bson:"location" json:"location"`
	Weight      float64            `bson:"weight" json:"weight"`
	Category    Category           `bson:"category" json:"category"`
	CollectedAt time.Time          `bson:"collected_at" json:"collectedAt"`
	Date        string             `bson:"date" json:"date"`
	Time        string             `bson:"time" json:"time"`
	User        primitive.ObjectID `bson:"user,omitempty" json:"user,omitempty"`
}

// WasteUpdate carries a partial update; nil fields are left untouched.
type WasteUpdate struct {
	Location *string
	Weight   *float64
	Category *Category
}

func (u WasteUpdate) Empty() bool {
	return u.Location == nil && u.Weight == nil && u.Category == nil
}
