package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/interfaces"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/room"
)

const (
	toolCreateProduct    = "create_product"
	toolAddProductToShow = "add_product_to_show"
)

// toolSpecs describes the two callable tools exposed to the model.
func toolSpecs() []interfaces.ToolSpec {
	return []interfaces.ToolSpec{
		{
			Name:        toolCreateProduct,
			Description: "Create a new product in the database. Call when all 4 fields are collected.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":     map[string]any{"type": "string", "description": "The product name."},
					"weight":   map[string]any{"type": "number", "description": "The weight in ounces."},
					"price":    map[string]any{"type": "number", "description": "The price in USD."},
					"quantity": map[string]any{"type": "integer", "description": "The quantity in stock."},
				},
				"required": []string{"name", "weight", "price", "quantity"},
			},
		},
		{
			Name: toolAddProductToShow,
			Description: "Add a recently created product to the current live show carousel. " +
				"Call this when the user says 'add product to show'.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"product_id": map[string]any{"type": "string", "description": "The ID of the product to add to the show."},
				},
				"required": []string{"product_id"},
			},
		},
	}
}

type createProductArgs struct {
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (a *Assistant) createProduct(ctx context.Context, rawArgs string) string {
	var args createProductArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return fmt.Sprintf("Error: invalid create_product arguments: %v.", err)
	}

	fields := ProductFields{Name: args.Name, Weight: args.Weight, Price: args.Price, Quantity: args.Quantity}
	if err := fields.Validate(); err != nil {
		return fmt.Sprintf("Error: %v.", err)
	}

	sellerID, ok := room.ResolveSeller(a.session)
	if !ok {
		return "Error: Could not determine seller identity."
	}

	if a.fsm.State() == StateCollecting {
		if err := a.fsm.Apply(EventCreateRequested); err != nil {
			log.Printf("assistant: create transition: %v", err)
		}
	}

	product, err := a.products.CreateProduct(ctx, sellerID, fields.Name, fields.Weight, fields.Price, fields.Quantity)
	if err != nil {
		if a.fsm.State() == StateCreating {
			_ = a.fsm.Apply(EventCreateFailed)
		}
		return fmt.Sprintf("Error creating product: %v", err)
	}

	if a.fsm.State() == StateCreating {
		_ = a.fsm.Apply(EventCreateSucceeded)
	}
	a.lastProductID = product.ID.String()
	a.lastProductName = fields.Name

	if a.recorder != nil {
		if err := a.recorder.RecordProduct(a.sessionID, a.lastProductID, fields.Name, sellerID); err != nil {
			log.Printf("assistant: record product: %v", err)
		}
	}

	return fmt.Sprintf(
		"Product created successfully. Name: %s, Price: $%.2f, Weight: %goz, Quantity: %d. Product ID: %s",
		fields.Name, fields.Price, fields.Weight, fields.Quantity, a.lastProductID,
	)
}

type addToShowArgs struct {
	ProductID string `json:"product_id"`
}

func (a *Assistant) addProductToShow(ctx context.Context, rawArgs string) string {
	var args addToShowArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return fmt.Sprintf("Error: invalid add_product_to_show arguments: %v.", err)
	}

	broadcaster, ok := room.ResolveBroadcaster(a.session)
	if !ok {
		return "Error: No broadcaster found in the room."
	}

	name := a.lastProductName
	if name == "" {
		name = "Product"
	}

	resp, err := a.notifier.NotifyProductAdded(ctx, broadcaster, args.ProductID, name)
	if err != nil {
		return fmt.Sprintf("Error adding product to show: %v", err)
	}

	return fmt.Sprintf("Product added to the live show carousel. %s", resp)
}
