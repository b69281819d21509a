package analyzer

// DefaultRubric is the dealership service-campaign call rubric. It is
// configuration data, not analyzer logic: EvaluateQA takes whatever
// ordered question list the caller supplies.
func DefaultRubric() []string {
	return []string{
		"Did the agent introduce themselves and identify the dealership during the introduction?",
		"Did the agent identify the reason for the call?",
		"Did the agent speak to the correct person?",
		"Did the agent verify the phone/email address?",
		"Did the agent verify the vehicle information?",
		"Did the agent ask for current mileage and was clear on campaign service (DFS/INA/Recall)?",
		"Did the agent recap the appointment and represent the dealership positively and with a sense of trust?",
		"Did the agent set urgency in scheduling an appointment as soon as possible?",
		"Was the agent professional throughout the call?",
		"Did the agent speak confidently?",
		"Did the agent display active listening skills?",
		"Did the agent sound upbeat, enthusiastic, and friendly?",
	}
}
