package domain

import "time"

// AgentType splits the agent pool for the two dispatch phases. Only student
// agents see student_pool broadcasts.
type AgentType string

const (
	AgentTypeStudent    AgentType = "student"
	AgentTypeThirdParty AgentType = "third_party"
)

// NormalizeAgentType maps legacy labels onto the canonical values.
// Older registrations used "normal" for non-student agents.
func NormalizeAgentType(raw string) AgentType {
	switch AgentType(raw) {
	case AgentTypeStudent:
		return AgentTypeStudent
	case AgentTypeThirdParty, "normal", "":
		return AgentTypeThirdParty
	default:
		return AgentTypeThirdParty
	}
}

// VehicleType is how the agent moves.
type VehicleType string

const (
	VehicleBike    VehicleType = "bike"
	VehicleScooter VehicleType = "scooter"
	VehicleCar     VehicleType = "car"
	VehicleWalk    VehicleType = "walk"
)

// DeliveryAgent is a registered courier. Only active agents may bid or be
// assigned; verification gates payouts upstream, not bidding.
type DeliveryAgent struct {
	AgentID         string      `json:"agent_id"`
	FullName        string      `json:"full_name"`
	Email           string      `json:"email,omitempty"`
	PhoneNumber     string      `json:"phone_number"`
	AgentType       AgentType   `json:"agent_type"`
	UniversityName  string      `json:"university_name,omitempty"`
	StudentID       string      `json:"student_id,omitempty"`
	VehicleType     VehicleType `json:"vehicle_type"`
	IsActive        bool        `json:"is_active"`
	IsVerified      bool        `json:"is_verified"`
	Rating          float64     `json:"rating"`
	TotalDeliveries int         `json:"total_deliveries"`
	TotalEarnings   float64     `json:"total_earnings"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Validate enforces the registration invariants.
func (a DeliveryAgent) Validate() error {
	if a.AgentID == "" {
		return InvalidInputf("agent_id is required")
	}
	if a.AgentType == AgentTypeStudent && (a.UniversityName == "" || a.StudentID == "") {
		return InvalidInputf("student agents must have university_name and student_id")
	}
	if a.Rating < 1.0 || a.Rating > 5.0 {
		return InvalidInputf("rating must be within [1.0, 5.0]")
	}
	return nil
}
