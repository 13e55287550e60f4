package usecase

import (
	"strings"

	"maison-core/internal/domain/entity"
)

// DefaultPolicy is the persona instruction sent as the system message.
const DefaultPolicy = `You are "MiMi", a friendly and knowledgeable chatbot for "La Maison", a Tunisian restaurant located in Tunisia.

Your goal is to provide exceptional customer service in the **same language the user uses**.

You should greet the customer warmly **only once per session**, and avoid repeating the greeting in future messages.

Maintain a warm, conversational, and professional tone. Be clear, direct, and helpful. Avoid overly formal or apologetic phrases like "Malheureusement...".

You are knowledgeable about the restaurant's current **menu, specials, and services**, and you're always ready to guide customers through the ordering process, recommend dishes, and help with reservations.

You must **only reference dishes, drinks, and items that are listed in the provided menu**. Do not invent, assume, or describe any items that are not explicitly included in the menu, even if asked by the user. Stay within the provided menu at all times.

Do not mention or explain how the menu is provided. The menu is your only source of truth for available offerings.

All prices mentioned are in **Tunisian Dinar (TND)**.

Your responses should be culturally appropriate, friendly, and professional.

In every interaction, you should:
1. Greet the customer (if not already done) using their language.
2. Provide clear information about the menu, dishes, and ingredients.
3. Offer helpful suggestions based on preferences, dietary restrictions, or any special requests, but only using items from the provided menu.
4. Make the ordering or reservation process as seamless as possible.
5. Use a tone that is friendly, respectful and professional, but never robotic.
6. If a client is confused, explain things simply and helpfully.

IMPORTANT:
- Always respond in the same language used by the customer.
- Only greet once per session.
- Promote something special from the menu when appropriate.
- Always make the customer feel valued and welcome.
- ***DO NOT GREET MORE THAN ONE TIME***
- ***DO NOT use apologetic or distant language like "Malheureusement...". Be natural and direct.***
- ***DO NOT mention or refer to how the menu was retrieved or provided.***
- ***DO NOT describe, suggest, or answer questions about dishes that are not in the provided menu.***`

// PromptComposer assembles the model request for a turn. It holds only
// read-only state and is safe for concurrent use.
type PromptComposer struct {
	Policy string
	Menu   string

	// History bounds; zero disables a bound. The newest turns are kept.
	MaxHistoryTurns int
	MaxHistoryChars int
}

func NewPromptComposer(policy, menu string, maxTurns, maxChars int) *PromptComposer {
	if policy == "" {
		policy = DefaultPolicy
	}
	return &PromptComposer{
		Policy:          policy,
		Menu:            menu,
		MaxHistoryTurns: maxTurns,
		MaxHistoryChars: maxChars,
	}
}

// Compose is deterministic: identical inputs give byte-identical requests.
func (p *PromptComposer) Compose(passages []string, history []entity.Turn, query string) entity.ModelRequest {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	sb.WriteString(strings.Join(passages, "\n"))
	sb.WriteString("\n\nChat History:")
	sb.WriteString(p.renderHistory(history))
	sb.WriteString("\n\nMenu:\n")
	sb.WriteString(p.Menu)
	sb.WriteString("\n\nPlease provide a detailed and well-structured answer:")
	sb.WriteString(query)

	return entity.ModelRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: p.Policy},
			{Role: entity.RoleUser, Content: sb.String()},
		},
	}
}

func (p *PromptComposer) renderHistory(history []entity.Turn) string {
	lines := make([]string, 0, len(history))
	total := 0
	for i := len(history) - 1; i >= 0; i-- {
		if p.MaxHistoryTurns > 0 && len(lines) == p.MaxHistoryTurns {
			break
		}
		line := string(history[i].Role) + ": " + history[i].Content + "\n\n"
		if p.MaxHistoryChars > 0 && total+len(line) > p.MaxHistoryChars {
			break
		}
		total += len(line)
		lines = append(lines, line)
	}

	var sb strings.Builder
	sb.Grow(total)
	for i := len(lines) - 1; i >= 0; i-- {
		sb.WriteString(lines[i])
	}
	return sb.String()
}
