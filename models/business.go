package models

// Entity lifecycle statuses shared by catalog records.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusDeleted  = "deleted"
)

// WorkingHoursRange is a single open period within one weekday.
// Day is the lowercase English weekday name; Open and Close are wall-clock
// times in "HH:mm" (24-hour) format, interpreted in the owning calendar's
// timezone. A weekday with no ranges is closed. More than one range per day
// is allowed (e.g., split by a lunch break) but ranges within a day must not
// overlap.
type WorkingHoursRange struct {
	Day   string `bson:"day" json:"day"`
	Open  string `bson:"open" json:"open"`
	Close string `bson:"close" json:"close"`
}

// Business represents a service business bookable through the platform.
type Business struct {
	ID                       string              `bson:"id" json:"id"`
	Name                     string              `bson:"name" json:"name"`
	Description              string              `bson:"description,omitempty" json:"description,omitempty"`
	URLPostfix               string              `bson:"urlPostfix" json:"urlPostfix"`
	WorkingHours             []WorkingHoursRange `bson:"workingHours" json:"workingHours"`
	SlotTime                 int                 `bson:"slotTime" json:"slotTime"`                                 // slot granularity in minutes
	MaximumDaysInFuture      int                 `bson:"maximumDaysInFuture" json:"maximumDaysInFuture"`           // booking horizon in days
	MinimumTimeSlotsInFuture int                 `bson:"minimumTimeSlotsInFuture" json:"minimumTimeSlotsInFuture"` // lead time in slot counts
	Status                   string              `bson:"status" json:"status"`
}

// LeadTimeMinutes converts the slot-count lead time into minutes.
func (b Business) LeadTimeMinutes() int {
	return b.MinimumTimeSlotsInFuture * b.SlotTime
}
