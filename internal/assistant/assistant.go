package assistant

import (
	"context"
	"fmt"
	"log"

	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/interfaces"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/room"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/supabase"
)

// instructions steer the language model. The listing flow itself is enforced
// by the state machine in fsm.go; this prose covers tone and field prompting.
const instructions = "You are a product listing assistant for JaTango, a live shopping app. " +
	"You help sellers add products using their voice.\n\n" +
	"RULES:\n" +
	"- Wait for the user to say 'add product' before starting the product creation flow.\n" +
	"- Collect these 4 fields one at a time: product name, weight (in ounces), " +
	"price (in USD), and quantity in stock.\n" +
	"- Confirm each field as the user provides it.\n" +
	"- When all 4 fields are collected, call the create_product tool.\n" +
	"- After creating the product, tell the user it was created and ask if they " +
	"want to 'add product to show' (to put it in the live carousel) or 'add product' " +
	"to create another one.\n" +
	"- If the user says 'add product to show', call the add_product_to_show tool " +
	"with the product ID from the last created product.\n" +
	"- Keep responses short and conversational. The user is likely on camera.\n" +
	"- Do NOT use any formatting, emojis, or special characters in your speech.\n"

const greetingInstruction = "Greet the user briefly and tell them to say 'add product' " +
	"whenever they want to create a new product."

// maxToolSteps bounds one spoken turn's tool-calling loop.
const maxToolSteps = 4

// ProductCreator persists a product record; implemented by supabase.Client.
type ProductCreator interface {
	CreateProduct(ctx context.Context, sellerID, name string, weight, cost float64, quantity int) (*supabase.Product, error)
}

// ShowNotifier pushes a created product to the broadcaster's carousel.
type ShowNotifier interface {
	NotifyProductAdded(ctx context.Context, broadcasterIdentity, productID, productName string) (string, error)
}

// CreationRecorder is an optional local audit hook for successful creations.
type CreationRecorder interface {
	RecordProduct(sessionID, productID, name, sellerID string) error
}

// Assistant is the conversational agent for one voice session. The room
// session is an explicit dependency rather than an ambient lookup so tests
// can inject fakes.
type Assistant struct {
	llm      interfaces.LLM
	products ProductCreator
	session  room.Session
	notifier ShowNotifier
	recorder CreationRecorder
	sessionID string

	fsm     *Machine
	history []interfaces.ChatMessage

	// session-local state, set after a successful create_product call and
	// reset only when the process restarts
	lastProductID   string
	lastProductName string
}

// New constructs the assistant for a session.
func New(llm interfaces.LLM, products ProductCreator, session room.Session, notifier ShowNotifier) *Assistant {
	return &Assistant{
		llm:      llm,
		products: products,
		session:  session,
		notifier: notifier,
		fsm:      NewMachine(),
	}
}

// WithRecorder attaches a local audit recorder keyed by sessionID.
func (a *Assistant) WithRecorder(r CreationRecorder, sessionID string) *Assistant {
	a.recorder = r
	a.sessionID = sessionID
	return a
}

// State exposes the listing flow state.
func (a *Assistant) State() State { return a.fsm.State() }

// LastProduct returns the id and name of the most recently created product.
func (a *Assistant) LastProduct() (id, name string) {
	return a.lastProductID, a.lastProductName
}

// Greeting produces the opening line spoken right after session start.
func (a *Assistant) Greeting(ctx context.Context) (string, error) {
	msgs := []interfaces.ChatMessage{
		{Role: "system", Content: instructions},
		{Role: "system", Content: greetingInstruction},
	}
	res, err := a.llm.Chat(ctx, msgs, nil)
	if err != nil {
		return "", fmt.Errorf("generate greeting: %w", err)
	}
	return res.Content, nil
}

// Respond handles one final user transcript and returns the text to speak.
// Tool failures never escape: they are stringified at the tool boundary and
// fed back to the model so the conversation stays alive.
func (a *Assistant) Respond(ctx context.Context, userText string) (string, error) {
	if HeardTrigger(userText) {
		st := a.fsm.State()
		if st == StateIdle || st == StateAwaitingNext {
			if err := a.fsm.Apply(EventTrigger); err != nil {
				log.Printf("assistant: trigger transition: %v", err)
			}
		}
	}

	a.history = append(a.history, interfaces.ChatMessage{Role: "user", Content: userText})

	for step := 0; step < maxToolSteps; step++ {
		res, err := a.llm.Chat(ctx, a.messages(), toolSpecs())
		if err != nil {
			return "", fmt.Errorf("llm chat: %w", err)
		}

		if len(res.ToolCalls) == 0 {
			a.history = append(a.history, interfaces.ChatMessage{Role: "assistant", Content: res.Content})
			return res.Content, nil
		}

		a.history = append(a.history, interfaces.ChatMessage{
			Role:      "assistant",
			Content:   res.Content,
			ToolCalls: res.ToolCalls,
		})
		for _, call := range res.ToolCalls {
			result := a.dispatch(ctx, call)
			a.history = append(a.history, interfaces.ChatMessage{
				Role:       "tool",
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    result,
			})
		}
	}

	return "Sorry, I could not finish that request. Please try again.", nil
}

func (a *Assistant) messages() []interfaces.ChatMessage {
	msgs := make([]interfaces.ChatMessage, 0, len(a.history)+1)
	msgs = append(msgs, interfaces.ChatMessage{Role: "system", Content: instructions})
	return append(msgs, a.history...)
}

// dispatch routes a tool call to its handler. It is the error boundary: no
// failure, panic included, crosses it as anything but a spoken sentence.
func (a *Assistant) dispatch(ctx context.Context, call interfaces.ToolCall) (result string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("assistant: tool %s panicked: %v", call.Name, r)
			result = fmt.Sprintf("Error: the %s tool failed unexpectedly.", call.Name)
		}
	}()

	switch call.Name {
	case toolCreateProduct:
		return a.createProduct(ctx, call.Arguments)
	case toolAddProductToShow:
		return a.addProductToShow(ctx, call.Arguments)
	default:
		return fmt.Sprintf("Error: unknown tool %s.", call.Name)
	}
}
