package models

// Service is a bookable offering. TimeSlots is the duration expressed as an
// integer multiple of the owning business's slot granularity.
type Service struct {
	ID         string `bson:"id" json:"id"`
	BusinessID string `bson:"businessId" json:"businessId"`
	Name       string `bson:"name" json:"name"`
	TimeSlots  int    `bson:"timeSlots" json:"timeSlots"`
	Status     string `bson:"status" json:"status"`
}

// DurationMinutes resolves the service duration against a business's slot
// granularity.
func (s Service) DurationMinutes(b Business) int {
	return s.TimeSlots * b.SlotTime
}
