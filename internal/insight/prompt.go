package insight

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/retailradar/event-insights/internal/domain"
)

const csvFence = "```csv"

// csvHeader is the first two columns of the requested CSV output; its
// presence in a reply marks the start of an unfenced CSV block.
const csvHeader = "Product Name,Category"

// BuildPrompt renders the demand-forecast prompt for one event row.
func BuildPrompt(row domain.EventRow) string {
	return fmt.Sprintf(`As a retail demand forecasting expert, analyze this event and provide detailed product-level predictions:

**EVENT ANALYSIS REQUEST**
- EVENT: %s
- TYPE: %s
- EXPECTED ATTENDANCE: %s
- DATE: %s
- VENUE: %s (%s)

**REQUIRED OUTPUT FORMAT**
1. Trending Products Analysis:
   - List 8-12 specific products (include brand names where relevant)
   - For each product provide:
     * Current typical inventory level
     * Recommended stock increase (%% and units)
     * Price point recommendation
     * Profit margin estimate

2. Pop-up Store Feasibility:
   - ROI probability (Low/Medium/High)
   - Required inventory investment
   - Expected revenue range
   - Break-even attendance threshold

3. Generate a CSV format output with columns:
   Product Name,Category,Current Stock,Recommended Increase,Projected Demand,Price Point,Profit Margin

Example format for CSV:
"""
Product Name,Category,Current Stock,Recommended Increase,Projected Demand,Price Point,Profit Margin
Gatorade 20oz bottles,Beverages,200,+75%%,350,$1.98,18%%
6-Person Camping Tent,Outdoor Gear,15,+120%%,33,$89.97,32%%
"""

Focus on top-selling inventory categories and private label brands where applicable.`,
		row.Title,
		row.Category,
		groupThousands(row.Attendance),
		row.StartLocal,
		row.VenueName,
		row.VenueAddress,
	)
}

// ExtractCSV opportunistically pulls a CSV block out of a free-form model
// reply. It prefers a fenced block, falls back to the bare header heuristic,
// and returns "" when neither marker is present.
func ExtractCSV(raw string) string {
	if _, after, ok := strings.Cut(raw, csvFence); ok {
		block, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(block)
	}
	if _, after, ok := strings.Cut(raw, csvHeader); ok {
		block, _, _ := strings.Cut(after, "\n\n")
		return csvHeader + block
	}
	return ""
}

// StripFences removes CSV code fences so the commentary reads as plain text.
func StripFences(raw string) string {
	raw = strings.ReplaceAll(raw, csvFence, "")
	return strings.ReplaceAll(raw, "```", "")
}

// groupThousands renders an integer with comma separators, e.g. 325000 ->
// "325,000".
func groupThousands(n int) string {
	s := strconv.Itoa(n)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return b.String()
}
