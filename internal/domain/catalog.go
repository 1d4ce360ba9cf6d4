package domain

import "strings"

type Lab struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type Training struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LabPatch carries partial updates; nil fields are left untouched.
type LabPatch struct {
	Name     *string `json:"name,omitempty"`
	Location *string `json:"location,omitempty"`
}

type TrainingPatch struct {
	Name *string `json:"name,omitempty"`
}

type CreateLabRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (r *CreateLabRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Location = strings.TrimSpace(r.Location)
}

func (r *CreateLabRequest) Validate() error {
	if r.Name == "" || r.Location == "" {
		return ErrValidation
	}
	return nil
}

type CreateTrainingRequest struct {
	Name string `json:"name"`
}

func (r *CreateTrainingRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *CreateTrainingRequest) Validate() error {
	if r.Name == "" {
		return ErrValidation
	}
	return nil
}
