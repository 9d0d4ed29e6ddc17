package catalog

// CategoryForm is accepted as JSON or multipart form. Uploaded files arrive
// as parts named "image" and "video" and take precedence over the URLs.
// swagger:model CategoryForm
type CategoryForm struct {
	Name        string `json:"name"        form:"name"        binding:"required,max=120" example:"Birthday Decor"`
	Description string `json:"description" form:"description" binding:"required,max=2000" example:"Balloon arches and themed backdrops"`
	ImageURL    string `json:"imageUrl"    form:"imageUrl"    binding:"omitempty,max=500"`
	VideoURL    string `json:"videoUrl"    form:"videoUrl"    binding:"omitempty,max=500"`
	SortOrder   int    `json:"sortOrder"   form:"sortOrder"   binding:"gte=0"`
	IsActive    *bool  `json:"isActive"    form:"isActive"`
}

// CategoryPatchForm is the partial-update body.
// swagger:model CategoryPatchForm
type CategoryPatchForm struct {
	Name        *string `json:"name"        form:"name"        binding:"omitempty,min=1,max=120"`
	Description *string `json:"description" form:"description" binding:"omitempty,min=1,max=2000"`
	ImageURL    *string `json:"imageUrl"    form:"imageUrl"    binding:"omitempty,max=500"`
	VideoURL    *string `json:"videoUrl"    form:"videoUrl"    binding:"omitempty,max=500"`
	SortOrder   *int    `json:"sortOrder"   form:"sortOrder"   binding:"omitempty,gte=0"`
	IsActive    *bool   `json:"isActive"    form:"isActive"`
	Version     *int    `json:"version"     form:"version"     binding:"omitempty,gte=1"`
}

func (f CategoryPatchForm) Patch() Patch {
	return Patch{
		Name:        f.Name,
		Description: f.Description,
		ImageURL:    f.ImageURL,
		VideoURL:    f.VideoURL,
		SortOrder:   f.SortOrder,
		IsActive:    f.IsActive,
		Version:     f.Version,
	}
}

// ActiveRequest toggles visibility without touching other fields.
// swagger:model ActiveRequest
type ActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// ReorderRequest lists every sibling with its desired position.
// swagger:model ReorderRequest
type ReorderRequest struct {
	Items []Position `json:"items" binding:"required,min=1,dive"`
}
