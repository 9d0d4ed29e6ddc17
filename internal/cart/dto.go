package cart

// AddItemRequest adds a product to a cart. Name, price and image are read
// from the catalog, not from the client.
// swagger:model AddCartItemRequest
type AddItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Module    string  `json:"module"    binding:"required,module" example:"shop"`
	Quantity  int     `json:"quantity"  binding:"omitempty,min=1" example:"1"`
	AddOns    []AddOn `json:"addOns"    binding:"omitempty,dive"`
}

// QuantityRequest sets a line quantity; values below one are raised to one.
// swagger:model CartQuantityRequest
type QuantityRequest struct {
	Quantity int `json:"quantity" example:"2"`
}
