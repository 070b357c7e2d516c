package models

// Employee belongs to exactly one business and is bound to exactly one
// external sub-calendar. ServiceIDs lists the services the employee may
// perform.
type Employee struct {
	ID            string   `bson:"id" json:"id"`
	BusinessID    string   `bson:"businessId" json:"businessId"`
	Name          string   `bson:"name" json:"name"`
	SubCalendarID string   `bson:"subCalendarId" json:"subCalendarId"`
	ServiceIDs    []string `bson:"services" json:"services"`
	Status        string   `bson:"status" json:"status"`
}
