package contract

type CompanyRequest struct {
	Name string `json:"name" validate:"required,notblank,min=2,max=200"`
	NIT  string `json:"nit" validate:"required,nit"`
}

type UpdateCompanyRequest struct {
	Name   *string `json:"name" validate:"omitempty,notblank,min=2,max=200"`
	Active *bool   `json:"active"`
}

type CompanyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NIT       string `json:"nit"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
