package resp

import (
	v1 "lingoflow/pkg/api/v1"
	"lingoflow/pkg/lang"
)

type FeatureResponse struct {
	Feature *v1.Feature `json:"feature"`
}

type FeatureListResponse struct {
	Features []v1.Feature `json:"features"`
}

type DeleteFeatureResponse struct {
	Success bool `json:"success"`
}

type FieldProgress struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Progress int    `json:"progress"`
}

type ProgressResponse struct {
	Progress int             `json:"progress"`
	Filled   int             `json:"filled"`
	Total    int             `json:"total"`
	Fields   []FieldProgress `json:"fields"`
}

type VersionsResponse struct {
	Versions []string `json:"versions"`
}

type LanguagesResponse struct {
	Languages []lang.Language `json:"languages"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
