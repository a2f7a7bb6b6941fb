package intake

// Service is a treatment patients can request.
type Service struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DefaultService is used when a request names no treatment.
const DefaultService = "Consultation"

var offered = []Service{
	{ID: "Consultation", Title: "Consultation", Description: "Thorough check-up and treatment planning."},
	{ID: "Braces / Ortho", Title: "Orthodontics", Description: "Braces, expanders, and alignment."},
	{ID: "Cleaning", Title: "Cleaning", Description: "Prophylaxis and stain removal."},
	{ID: "Tooth Restoration", Title: "Restoration", Description: "Fillings, crowns, and repairs."},
	{ID: "Pain / Emergency", Title: "Emergency", Description: "Urgent care for toothaches."},
}

// Services returns the offered treatments in display order.
func Services() []Service {
	out := make([]Service, len(offered))
	copy(out, offered)
	return out
}
