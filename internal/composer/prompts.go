// Package composer assembles the prompts sent to the language model and the
// scripted follow-up questions appended to each turn. Prompt text is fixed at
// compile time; only the evidence context, history, and lead state vary.
package composer

import (
	"fmt"
	"strings"

	"github.com/albadia/villachat/internal/lead"
	"github.com/albadia/villachat/internal/session"
)

// historyWindow limits how many trailing messages are quoted in the prompt.
const historyWindow = 6

const systemPrompt = `You are an expert real estate advisor for Al Badia Villas in Dubai Festival City. Your role is to:

1. **Provide accurate information** from the floorplans document only
2. **Never hallucinate** prices, availability, or features not in the provided context
3. **Build trust** through factual, grounded responses
4. **Identify buying signals** and guide naturally toward lead capture
5. **Be conversational** and helpful without being pushy

**CRITICAL RULES:**
- ONLY use information from the provided context (floorplans PDF)
- NEVER invent pricing or availability - always say these require agent confirmation
- NEVER add features not documented in the floorplans
- ALWAYS cite the page number when referencing specific villa details
- When uncertain, acknowledge it and offer to connect with a sales agent

**VILLA TYPES AVAILABLE:**
- 3BR MIA (Type A without pool, Type B with pool)
- 4BR SHADEA (Type A without pool, Type B with pool)
- 5BR MODEA (Type A and Type B)

**LEAD GENERATION APPROACH:**
- Listen for budget mentions, timeline, requirements, and current situation
- Ask qualifying questions naturally within helpful responses
- Suggest concrete next steps (viewing, agent call, brochure)
- Create urgency through value, not pressure

**CONVERSATION STYLE:**
- Professional yet warm and approachable
- Confident about documented facts
- Honest about limitations (pricing, availability)
- Proactive in suggesting next steps

When discussing specific villas, mention that visual floorplans are available.`

// SystemPrompt returns the fixed advisor persona prompt.
func SystemPrompt() string { return systemPrompt }

// UserPrompt builds the per-turn prompt. Sections are emitted in a fixed
// order and each is omitted entirely when it has nothing to say: evidence
// context, the trailing window of conversation history, lead context, then
// the current question with grounding instructions.
func UserPrompt(query, context string, history []session.Message, leadInfo map[string]string, signals []string) string {
	var b strings.Builder

	if context != "" {
		fmt.Fprintf(&b, "**CONTEXT FROM FLOORPLANS DOCUMENT:**\n%s\n\n", context)
	}

	if len(history) > 0 {
		recent := history
		if len(recent) > historyWindow {
			recent = recent[len(recent)-historyWindow:]
		}
		lines := make([]string, len(recent))
		for i, msg := range recent {
			lines[i] = fmt.Sprintf("%s: %s", strings.ToUpper(msg.Role), msg.Content)
		}
		fmt.Fprintf(&b, "**CONVERSATION HISTORY:**\n%s\n\n", strings.Join(lines, "\n"))
	}

	if len(leadInfo) > 0 || len(signals) > 0 {
		var parts []string
		if len(leadInfo) > 0 {
			captured := make([]string, 0, len(leadInfo))
			for _, k := range []string{lead.FieldName, lead.FieldEmail, lead.FieldPhone} {
				if v, ok := leadInfo[k]; ok {
					captured = append(captured, fmt.Sprintf("%s: %s", k, v))
				}
			}
			// Keys outside the known contact fields still get reported.
			for k, v := range leadInfo {
				if k != lead.FieldName && k != lead.FieldEmail && k != lead.FieldPhone {
					captured = append(captured, fmt.Sprintf("%s: %s", k, v))
				}
			}
			parts = append(parts, "Captured info: "+strings.Join(captured, ", "))
		}
		if len(signals) > 0 {
			parts = append(parts, "Detected signals: "+strings.Join(signals, ", "))
		}
		fmt.Fprintf(&b, "**LEAD CONTEXT:**\n%s\n\n", strings.Join(parts, " | "))
	}

	fmt.Fprintf(&b, `**USER'S CURRENT QUESTION:**
%s

**INSTRUCTIONS:**
Answer the user's question using ONLY the information from the context above. Always cite the page number when referencing specific details. If the information is not in the context, acknowledge this and offer to connect them with a sales agent. Be conversational and helpful.`, query)

	return b.String()
}

// FollowUp picks the scripted follow-up question for the turn. Branch order
// is precedence: high intent with viewing interest outranks plain high
// intent, which outranks medium tiers; everything else gets the open-ended
// educational question.
func FollowUp(level lead.Level, signals []string, leadInfo map[string]string) string {
	has := func(tag string) bool {
		for _, s := range signals {
			if s == tag {
				return true
			}
		}
		return false
	}

	if level == lead.LevelHigh && has(lead.SignalViewing) {
		if leadInfo[lead.FieldPhone] == "" {
			return "I'd be happy to arrange a viewing for you. Could you share your phone number so our agent can coordinate the best time?"
		}
		return "I can arrange a site visit for you. What days this week work best for your schedule?"
	}

	if level == lead.LevelHigh {
		return "These villas tend to move quickly. Would you like to schedule a viewing or speak with one of our property consultants?"
	}

	if level == lead.LevelMedium && has(lead.SignalRequirements) {
		if leadInfo[lead.FieldEmail] == "" {
			return "I can send you detailed floor plans and specifications via email. What's the best email address to reach you?"
		}
		return "Would you like me to send you detailed floor plans and a comparison of the villa types that match your requirements?"
	}

	if level == lead.LevelMedium && has(lead.SignalComparison) {
		return "I can create a detailed comparison for you. Which specific features are most important for your decision?"
	}

	return "What aspects of the villas would you like to know more about? I'm here to help with any questions."
}
