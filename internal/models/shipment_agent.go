package models

// ShipmentTemplate describes a reusable route configuration offered by the
// shipment agent for generating synthetic shipment event timelines.
type ShipmentTemplate struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Origin       string        `json:"origin"`
	Destination  string        `json:"destination"`
	Featured     bool          `json:"featured,omitempty"`
	JourneyTypes []JourneyType `json:"journeyTypes,omitempty"`
}

// JourneyType is one journey shape a template can produce, with the number of
// events its timeline contains.
type JourneyType struct {
	Label  string `json:"label"`
	Events int    `json:"events"`
}

// TemplatePreviewRequest asks the backend to expand a template into a concrete
// event timeline without creating it.
type TemplatePreviewRequest struct {
	TemplateID  string `json:"template_id"`
	TrackingID  string `json:"tracking_id,omitempty"`
	JourneyType string `json:"journey_type,omitempty"`
}

// TemplateCreateRequest commits a previewed timeline against a shipment.
type TemplateCreateRequest struct {
	TemplateID  string `json:"template_id"`
	TrackingID  string `json:"tracking_id"`
	JourneyType string `json:"journey_type,omitempty"`
}

// ShipmentEvent is one synthetic event in a generated timeline.
type ShipmentEvent struct {
	Timestamp   string `json:"timestamp"`
	Location    string `json:"location"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
}
