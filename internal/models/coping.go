package models

// CopingResponse is one scripted coping exercise
type CopingResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"` // hex without leading '#'
	LinkText    string `json:"link_text"`
	LinkURL     string `json:"link_url"`
}

// CopingTopic groups the exercises offered for one topic
type CopingTopic struct {
	Responses []CopingResponse `json:"responses"`
}
