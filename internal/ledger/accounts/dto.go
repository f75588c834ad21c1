package accounts

// CreateAccountRequest describes an explicit admin account creation.
type CreateAccountRequest struct {
	BusinessID int64  `json:"business_id" validate:"required,gt=0"`
	Code       string `json:"code" validate:"required,max=20"`
	Name       string `json:"name" validate:"required,max=200"`
	Type       string `json:"type" validate:"required,oneof=asset liability equity income expense"`
	SubType    string `json:"sub_type,omitempty" validate:"omitempty,max=50"`
	ParentID   *int64 `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
}

// UpdateAccountRequest carries the mutable account fields. Code and Type are
// accepted here but rejected by the service for system accounts.
type UpdateAccountRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active,omitempty"`
	Code        *string `json:"code,omitempty" validate:"omitempty,max=20"`
	Type        *string `json:"type,omitempty" validate:"omitempty,oneof=asset liability equity income expense"`
}

func (r UpdateAccountRequest) touchesGuardedFields() bool {
	return r.Code != nil || r.Type != nil
}
