package service

import (
	"reflect"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sangkips/closeday-api/internal/domain/entity"
	"github.com/sangkips/closeday-api/pkg/money"
	"github.com/sangkips/closeday-api/pkg/posvendor"
)

// Discounts are the messiest part of the vendor schema. They can appear at
// receipt level or per line item, as direct money fields or as structured
// discount objects, and the percentage may be explicit, buried in a nested
// object, or entirely absent. When absent it is inferred by comparing the
// discount amount against plausible base amounts from the same context.

// maxDiscountSearchDepth bounds the nested-percentage search so an
// attacker-influenced payload cannot recurse without limit.
const maxDiscountSearchDepth = 3

var (
	lineItemListKeys    = []string{"line_items", "items", "receipt_entries", "lines"}
	discountListKeys    = []string{"discounts", "line_discounts", "applied_discounts"}
	discountAmountKeys  = []string{"money_amount", "amount", "discount_amount", "discount", "value", "total"}
	discountPercentKeys = []string{"percent", "percentage", "discount_percent", "percent_value", "rate"}

	lineGrossKeys = []string{"gross_total_money", "gross_sales", "gross_amount", "total_before_discount", "subtotal"}
	lineNetKeys   = []string{"total_money", "total_amount", "total", "net_amount"}
	unitPriceKeys = []string{"price", "price_money", "unit_price", "item_price"}
	quantityKeys  = []string{"quantity", "qty", "count"}

	receiptGrossKeys = []string{"gross_total_money", "gross_sales", "gross_amount", "total_before_discounts", "subtotal"}
	receiptNetKeys   = []string{"total_money", "total_amount", "total", "net_amount"}

	receiptDiscountMoneyKeys = []string{"total_discount", "total_discounts", "discount_money", "discount_total", "discount_amount", "discount"}
)

// extractDiscounts yields a receipt's discount entries. Structured discount
// objects (receipt-level or per line item) are each resolved independently;
// when none exist, a single entry is synthesized from whichever
// receipt-level discount money field is non-zero. Entries with non-positive
// amounts are dropped, and amounts are always reported as positive
// magnitudes regardless of the vendor's sign convention.
func (s *ReconciliationService) extractDiscounts(receipt map[string]interface{}) []entity.DiscountEntry {
	var out []entity.DiscountEntry
	lineItems := posvendor.ListField(receipt, lineItemListKeys...)

	structured := false
	for _, d := range posvendor.ListField(receipt, discountListKeys...) {
		structured = true
		if entry, ok := s.resolveDiscount(d, receipt, nil, lineItems); ok {
			out = append(out, entry)
		}
	}
	for _, item := range lineItems {
		for _, d := range posvendor.ListField(item, discountListKeys...) {
			structured = true
			if entry, ok := s.resolveDiscount(d, receipt, item, lineItems); ok {
				out = append(out, entry)
			}
		}
	}
	if structured {
		return out
	}

	for _, key := range receiptDiscountMoneyKeys {
		v, exists := receipt[key]
		if !exists || v == nil {
			continue
		}
		amount := s.normalizer.Normalize(v).Abs()
		if !amount.IsPositive() {
			continue
		}
		gross, net := s.receiptBaseCandidates(receipt, lineItems)
		return append(out, entity.DiscountEntry{
			Amount:     amount,
			Percentage: inferPercentage(amount, gross, net),
		})
	}
	return out
}

// resolveDiscount turns one structured discount object into an entry. The
// percentage is taken from the object itself when explicit (including nested
// objects), otherwise inferred from the owning line item's bases, then from
// same-amount line items, then from the receipt as a whole.
func (s *ReconciliationService) resolveDiscount(d, receipt, item map[string]interface{}, lineItems []map[string]interface{}) (entity.DiscountEntry, bool) {
	amountVal, ok := posvendor.Field(d, discountAmountKeys...)
	if !ok {
		return entity.DiscountEntry{}, false
	}
	amount := s.normalizer.Normalize(amountVal).Abs()
	if !amount.IsPositive() {
		return entity.DiscountEntry{}, false
	}

	pct := findExplicitPercent(d)
	if pct == nil {
		pct = s.inferFromContext(amount, receipt, item, lineItems)
	}

	return entity.DiscountEntry{Amount: amount, Percentage: pct}, true
}

func (s *ReconciliationService) inferFromContext(amount decimal.Decimal, receipt, item map[string]interface{}, lineItems []map[string]interface{}) *decimal.Decimal {
	if item != nil {
		gross, net := s.lineBaseCandidates(item)
		if pct := inferPercentage(amount, gross, net); pct != nil {
			return pct
		}
	}

	// A receipt-level discount object without inferable context: try line
	// items carrying the same discount amount before giving up on item
	// granularity.
	if item == nil {
		for _, li := range lineItems {
			liDiscount := s.normalizer.Normalize(firstValue(li, receiptDiscountMoneyKeys)).Abs()
			if !liDiscount.Equal(amount) {
				continue
			}
			gross, net := s.lineBaseCandidates(li)
			if pct := inferPercentage(amount, gross, net); pct != nil {
				return pct
			}
		}
	}

	gross, net := s.receiptBaseCandidates(receipt, lineItems)
	return inferPercentage(amount, gross, net)
}

// findExplicitPercent searches a discount object for an explicit percentage,
// walking nested objects with an iterative worklist that is depth-limited
// and cycle-guarded by object identity.
func findExplicitPercent(d map[string]interface{}) *decimal.Decimal {
	type node struct {
		m     map[string]interface{}
		depth int
	}

	visited := make(map[uintptr]bool)
	work := []node{{m: d, depth: 0}}

	for len(work) > 0 {
		n := work[0]
		work = work[1:]

		ptr := reflect.ValueOf(n.m).Pointer()
		if visited[ptr] {
			continue
		}
		visited[ptr] = true

		if v, ok := posvendor.Field(n.m, discountPercentKeys...); ok {
			if pct := money.ParsePercent(v); pct != nil {
				return pct
			}
		}

		if n.depth >= maxDiscountSearchDepth {
			continue
		}

		// Sorted keys keep the traversal deterministic.
		keys := make([]string, 0, len(n.m))
		for k := range n.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch child := n.m[k].(type) {
			case map[string]interface{}:
				work = append(work, node{m: child, depth: n.depth + 1})
			case []interface{}:
				for _, el := range child {
					if obj, isMap := el.(map[string]interface{}); isMap {
						work = append(work, node{m: obj, depth: n.depth + 1})
					}
				}
			}
		}
	}
	return nil
}

// lineBaseCandidates gathers a line item's plausible base amounts:
// gross-before-discount fields (plus unit price × quantity as a synthesized
// gross) and net-after-discount fields.
func (s *ReconciliationService) lineBaseCandidates(item map[string]interface{}) (gross, net []decimal.Decimal) {
	for _, key := range lineGrossKeys {
		if v, exists := item[key]; exists && v != nil {
			if base := s.normalizer.Normalize(v); base.IsPositive() {
				gross = append(gross, base)
			}
		}
	}

	price := s.normalizer.Normalize(firstValue(item, unitPriceKeys))
	qty := money.Normalize(firstValue(item, quantityKeys))
	if price.IsPositive() && qty.IsPositive() {
		gross = append(gross, money.Round2(price.Mul(qty)))
	}

	for _, key := range lineNetKeys {
		if v, exists := item[key]; exists && v != nil {
			if base := s.normalizer.Normalize(v); base.IsPositive() {
				net = append(net, base)
			}
		}
	}
	return gross, net
}

// receiptBaseCandidates gathers receipt-level bases, adding the summed line
// item gross amounts as a synthesized gross candidate.
func (s *ReconciliationService) receiptBaseCandidates(receipt map[string]interface{}, lineItems []map[string]interface{}) (gross, net []decimal.Decimal) {
	for _, key := range receiptGrossKeys {
		if v, exists := receipt[key]; exists && v != nil {
			if base := s.normalizer.Normalize(v); base.IsPositive() {
				gross = append(gross, base)
			}
		}
	}

	var lineGross decimal.Decimal
	for _, item := range lineItems {
		price := s.normalizer.Normalize(firstValue(item, unitPriceKeys))
		qty := money.Normalize(firstValue(item, quantityKeys))
		if price.IsPositive() && qty.IsPositive() {
			lineGross = lineGross.Add(price.Mul(qty))
		}
	}
	if lineGross.IsPositive() {
		gross = append(gross, money.Round2(lineGross))
	}

	for _, key := range receiptNetKeys {
		if v, exists := receipt[key]; exists && v != nil {
			if base := s.normalizer.Normalize(v); base.IsPositive() {
				net = append(net, base)
			}
		}
	}
	return gross, net
}

// inferPercentage derives a discount percentage by comparing the amount
// against candidate bases. Gross candidates are preferred; net candidates
// (base reconstructed as net + discount) are only consulted when no gross
// candidate survives. A candidate is accepted only when 0 < pct < 100 and
// the base strictly exceeds the discount amount.
func inferPercentage(amount decimal.Decimal, gross, net []decimal.Decimal) *decimal.Decimal {
	hundred := decimal.NewFromInt(100)

	candidates := make([]decimal.Decimal, 0, len(gross))
	for _, base := range gross {
		if base.GreaterThan(amount) {
			pct := money.Round2(amount.Div(base).Mul(hundred))
			if pct.IsPositive() && pct.LessThan(hundred) {
				candidates = append(candidates, pct)
			}
		}
	}

	if len(candidates) == 0 {
		for _, n := range net {
			base := n.Add(amount)
			if base.GreaterThan(amount) {
				pct := money.Round2(amount.Div(base).Mul(hundred))
				if pct.IsPositive() && pct.LessThan(hundred) {
					candidates = append(candidates, pct)
				}
			}
		}
	}

	return pickBestPercentage(candidates)
}

// pickBestPercentage selects among surviving candidates: most frequent
// value first, ties broken by proximity to a whole number, then by the
// larger value.
func pickBestPercentage(candidates []decimal.Decimal) *decimal.Decimal {
	if len(candidates) == 0 {
		return nil
	}

	counts := make(map[string]int, len(candidates))
	for _, c := range candidates {
		counts[c.String()]++
	}

	best := candidates[0]
	bestCount := counts[best.String()]
	for _, c := range candidates[1:] {
		if c.Equal(best) {
			continue
		}
		count := counts[c.String()]
		if count > bestCount {
			best, bestCount = c, count
			continue
		}
		if count == bestCount {
			cDist, bestDist := wholeDistance(c), wholeDistance(best)
			if cDist.LessThan(bestDist) || (cDist.Equal(bestDist) && c.GreaterThan(best)) {
				best, bestCount = c, count
			}
		}
	}

	best = money.Round2(best)
	return &best
}

func wholeDistance(d decimal.Decimal) decimal.Decimal {
	return d.Sub(d.Round(0)).Abs()
}

// firstValue returns the first present, non-nil value among keys, without
// the non-empty-string filtering Field applies.
func firstValue(m map[string]interface{}, keys []string) interface{} {
	for _, key := range keys {
		if v, exists := m[key]; exists && v != nil {
			return v
		}
	}
	return nil
}
