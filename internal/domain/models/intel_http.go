package models

// StockRequest asks for one tracked symbol's quote.
type StockRequest struct {
	Symbol string `param:"symbol" validate:"required,alphanum,max=8"`
}

// NewsRequest bounds the number of articles returned by the facade.
type NewsRequest struct {
	Limit int `query:"limit" default:"50" validate:"omitempty,gte=1,lte=100"`
}

// SocialRequest bounds the number of posts returned by the facade.
type SocialRequest struct {
	Limit int `query:"limit" default:"25" validate:"omitempty,gte=1,lte=100"`
}
