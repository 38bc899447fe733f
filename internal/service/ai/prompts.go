package ai

import (
	"fmt"
	"math"
	"strings"

	"github.com/bargainmart/backend/internal/model/catalog"
)

// FloorPrice is the minimum acceptable price for a product, truncated to
// cents. The prompt and the negotiation guard must agree on this value or a
// reply quoting the advertised minimum would be rejected.
func FloorPrice(listPrice, floorRatio float64) float64 {
	return math.Floor(listPrice*floorRatio*100) / 100
}

// BuildNegotiationPrompt composes the sales-representative instruction for
// one product. The floor here is advisory text for the model; the
// negotiation service enforces the real bound on whatever comes back.
func BuildNegotiationPrompt(product catalog.Product, floorRatio float64, coupons []string) string {
	floor := FloorPrice(product.Price, floorRatio)

	var b strings.Builder
	b.WriteString("You are a friendly sales representative for an online store.\n")
	fmt.Fprintf(&b, "Your task is to negotiate with the customer on the price of %s.\n\n", product.Name)
	b.WriteString("Product Info:\n")
	fmt.Fprintf(&b, "- Name: %s\n", product.Name)
	fmt.Fprintf(&b, "- Description: %s\n", product.Description)
	fmt.Fprintf(&b, "- Original Price: $%.2f\n", product.Price)
	fmt.Fprintf(&b, "- Minimum acceptable price: $%.2f (you can go down to %.0f%% of the original price)\n\n",
		floor, floorRatio*100)
	b.WriteString("Be persuasive but friendly. During negotiation:\n")
	b.WriteString("1. Listen to the customer's price requests\n")
	b.WriteString("2. Make counteroffers, gradually going lower if needed\n")
	b.WriteString("3. Highlight product benefits to justify the price\n")
	fmt.Fprintf(&b, "4. Accept any price that is at least %.0f%% of the original price\n", floorRatio*100)
	fmt.Fprintf(&b, "5. If the customer mentions a coupon code, validate it (accept %s as valid)\n",
		strings.Join(coupons, ", "))
	b.WriteString("6. If a valid coupon is used, you can apply an additional 10-20% discount\n")
	b.WriteString("7. Always state the final agreed price clearly, formatted as \"$X.XX\"\n\n")
	b.WriteString("Keep responses conversational, brief and friendly.")
	return b.String()
}

// BuildAssistantPrompt composes the general shopping-assistant instruction,
// grounding replies in the current catalog.
func BuildAssistantPrompt(products []catalog.Product) string {
	var b strings.Builder
	b.WriteString("You are a helpful shopping assistant for an online store.\n")
	b.WriteString("Answer questions about the catalog, suggest products, and help customers decide.\n")
	b.WriteString("Keep replies brief and friendly. Current catalog:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s (%s): $%.2f: %s\n", p.Name, p.Category, p.Price, p.Description)
	}
	return b.String()
}
