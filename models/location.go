package models

// Location is a physical branch of a business. A location carries its own
// working hours; when an employee's location is resolvable it takes
// precedence over the business-level schedule.
type Location struct {
	ID           string              `bson:"id" json:"id"`
	BusinessID   string              `bson:"businessId" json:"businessId"`
	Name         string              `bson:"name" json:"name"`
	AddressName  string              `bson:"addressName,omitempty" json:"addressName,omitempty"`
	Phone        string              `bson:"phone,omitempty" json:"phone,omitempty"`
	EmployeeIDs  []string            `bson:"employees" json:"employees"`
	WorkingHours []WorkingHoursRange `bson:"workingHours" json:"workingHours"`
	Status       string              `bson:"status" json:"status"`
}
