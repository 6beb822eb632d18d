package supplement

type CreateSupplementRequest struct {
	Name           string `json:"name" validate:"required"`
	RecurrenceDays []int  `json:"recurrence_days" validate:"required,min=1"`
	TimeOfDay      string `json:"time_of_day" validate:"required"`
	Dosage         int    `json:"dosage" validate:"required,gt=0"`
}

type UpdateSupplementRequest struct {
	Name           *string `json:"name,omitempty"`
	RecurrenceDays []int   `json:"recurrence_days,omitempty"`
	TimeOfDay      *string `json:"time_of_day,omitempty"`
	Dosage         *int    `json:"dosage,omitempty"`
}

// TodaySupplement is a scheduled item annotated with its current-day state.
type TodaySupplement struct {
	UserSupplement
	DueToday   bool `json:"due_today"`
	PastDue    bool `json:"past_due"`
	TakenToday bool `json:"taken_today"`
}

type TodayResponse struct {
	Supplements      []*TodaySupplement `json:"supplements"`
	OverallAdherence float64            `json:"overall_adherence"`
}

type AdherenceResponse struct {
	SupplementID string  `json:"supplement_id"`
	WindowDays   int     `json:"window_days"`
	Rate         float64 `json:"rate"`
}
