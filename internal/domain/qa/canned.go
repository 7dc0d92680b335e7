package qa

// cannedTopic is a hand-authored terminal answer used when both semantic and
// keyword retrieval come back empty. Topics are checked in declaration order;
// the first trigger hit wins.
type cannedTopic struct {
	name       string
	triggers   []string
	answer     string
	confidence int
}

var cannedTopics = []cannedTopic{
	{
		name:     "leave",
		triggers: []string{"vacation", "leave", "mezuniyyet", "tetil", "holiday"},
		answer: "To request vacation or leave, submit a leave request through the approval workflow and your manager will review it. " +
			"For questions about remaining leave balance or special leave types, contact the HR department.",
		confidence: 60,
	},
	{
		name:     "password",
		triggers: []string{"password", "parol", "sifre", "reset", "login", "giris"},
		answer: "To reset your password, use the self-service reset link on the login page. If your account is locked, " +
			"open an IT support ticket and the IT department will restore access.",
		confidence: 60,
	},
	{
		name:     "technical",
		triggers: []string{"computer", "komputer", "laptop", "technical", "texniki", "broken", "xarab", "problem"},
		answer: "For technical issues with your computer or other equipment, create an IT support ticket describing the problem. " +
			"Urgent outages are handled first; include your device name and location.",
		confidence: 55,
	},
	{
		name:     "policy",
		triggers: []string{"policy", "qayda", "siyaset", "procedure", "prosedur", "rule"},
		answer: "Company policies and procedures are published in the document library. If the policy you need is not " +
			"available there, contact your department manager or HR.",
		confidence: 50,
	},
}

const (
	genericCannedAnswer = "I could not find relevant information in the available documentation. " +
		"Please contact the appropriate department, or rephrase your question with more detail."
	genericCannedConfidence = 20
)

// cannedAnswer matches the question against the fixed topic triggers and
// returns a topic-appropriate answer with its fixed confidence.
func cannedAnswer(question string) (string, int) {
	folded := FoldText(question)
	for _, topic := range cannedTopics {
		if containsAny(folded, topic.triggers...) {
			return topic.answer, topic.confidence
		}
	}
	return genericCannedAnswer, genericCannedConfidence
}
