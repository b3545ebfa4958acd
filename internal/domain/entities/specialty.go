package entities

// Specialty is a medical specialty offered by a facility. The name comes
// from the specialty catalog while the schedule is specific to the facility
// offering it. Name is empty when the catalog entry no longer exists.
type Specialty struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	ScheduleMonday    *string `json:"schedule_monday,omitempty"`
	ScheduleTuesday   *string `json:"schedule_tuesday,omitempty"`
	ScheduleWednesday *string `json:"schedule_wednesday,omitempty"`
	ScheduleThursday  *string `json:"schedule_thursday,omitempty"`
	ScheduleFriday    *string `json:"schedule_friday,omitempty"`
	ScheduleSaturday  *string `json:"schedule_saturday,omitempty"`
	ScheduleSunday    *string `json:"schedule_sunday,omitempty"`
}
