package posting

import "time"

const (
	JobTypePermanent = "Permanent"
	JobTypeContract  = "Contract"
)

type Posting struct {
	ID                      string    `json:"id"`
	Name                    string    `json:"name"`
	About                   string    `json:"about"`
	JobType                 string    `json:"jobType"`
	WhatYouWillDo           []string  `json:"whatYouWillDo"`
	Requirements            []string  `json:"requirements,omitempty"`
	ApplicationInstructions []string  `json:"applicationInstructions,omitempty"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

type CreateRequest struct {
	Name                    string
	About                   string
	JobType                 string
	WhatYouWillDo           []string
	Requirements            []string
	ApplicationInstructions []string
}
