package dto

type CreateHolidayDTO struct {
	Name string `json:"name" validate:"required"`
	Date string `json:"date" validate:"required"`
}

type HolidayDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
}

type UpdateWorkingHoursDTO struct {
	WorkdayStart string `json:"workday_start" validate:"required"`
	WorkdayEnd   string `json:"workday_end" validate:"required"`
}

// UpdateWorkweekDTO — список кодов дней недели: mon..sun.
type UpdateWorkweekDTO struct {
	Days []string `json:"days" validate:"required,min=1,dive,oneof=mon tue wed thu fri sat sun"`
}

type WorkPolicyDTO struct {
	WorkdayStart string   `json:"workday_start"`
	WorkdayEnd   string   `json:"workday_end"`
	Workweek     []string `json:"workweek"`
}
