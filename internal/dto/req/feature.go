package req

import v1 "lingoflow/pkg/api/v1"

// CreateFeatureRequest carries no binding tags: the store reports missing
// values with field-specific messages.
type CreateFeatureRequest struct {
	Name    string     `json:"name"`
	Version string     `json:"version"`
	Date    string     `json:"date"`
	Fields  []v1.Field `json:"fields"`
}

func (r CreateFeatureRequest) Input() v1.CreateFeatureInput {
	return v1.CreateFeatureInput{Name: r.Name, Version: r.Version, Date: r.Date, Fields: r.Fields}
}

// UpdateFeatureRequest distinguishes an omitted property from an empty one.
type UpdateFeatureRequest struct {
	Name    *string     `json:"name"`
	Version *string     `json:"version"`
	Date    *string     `json:"date"`
	Fields  *[]v1.Field `json:"fields"`
}

func (r UpdateFeatureRequest) Input() v1.UpdateFeatureInput {
	return v1.UpdateFeatureInput{Name: r.Name, Version: r.Version, Date: r.Date, Fields: r.Fields}
}

type ListFeaturesQuery struct {
	Query   string `form:"q"`
	Version string `form:"version"`
}

type FeatureURI struct {
	ID string `uri:"id" binding:"required"`
}

type FieldURI struct {
	ID      string `uri:"id" binding:"required"`
	FieldID string `uri:"fieldId" binding:"required"`
}
