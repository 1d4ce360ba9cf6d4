package domain

import (
	"regexp"
	"strings"
)

type RequestCodeRequest struct {
	Email string `json:"email"`
}

type VerifyCodeRequest struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
}

type SubmitNameRequest struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
}

type SubmitLabRequest struct {
	SessionID string `json:"session_id"`
	LabID     string `json:"lab_id"`
}

type ResendCodeRequest struct {
	SessionID string `json:"session_id"`
}

type LogoutRequest struct {
	SessionID string `json:"session_id"`
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
var codeRegex = regexp.MustCompile(`^\d{6}$`)

func (r *RequestCodeRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

func (r *RequestCodeRequest) Validate() error {
	if !emailRegex.MatchString(r.Email) {
		return ErrValidation
	}
	return nil
}

func (r *VerifyCodeRequest) Normalize() {
	r.Code = strings.TrimSpace(r.Code)
}

func (r *VerifyCodeRequest) Validate() error {
	if !codeRegex.MatchString(r.Code) {
		return ErrValidation
	}
	return nil
}

func (r *SubmitNameRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *SubmitNameRequest) Validate() error {
	if r.Name == "" {
		return ErrValidation
	}
	return nil
}

func (r *SubmitLabRequest) Normalize() {
	r.LabID = strings.TrimSpace(r.LabID)
}

func (r *SubmitLabRequest) Validate() error {
	if r.LabID == "" {
		return ErrValidation
	}
	return nil
}
