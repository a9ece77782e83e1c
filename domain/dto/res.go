package dto

// Res is the envelope returned by JSON endpoints.
type Res struct {
	ResponseCode    string      `json:"responseCode"`
	ResponseMessage string      `json:"responseMessage"`
	Data            interface{} `json:"data,omitempty"`
}

// CheckoutRes carries the provider client secret back to the buyer.
type CheckoutRes struct {
	PurchaseID   string `json:"purchaseId"`
	ClientSecret string `json:"clientSecret"`
	Amount       string `json:"amount"`
}
