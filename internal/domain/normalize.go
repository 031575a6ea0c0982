package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
)

// Field aliases accepted from external product shapes, in priority order.
// Spanish names come from the storefront pages, English ones from the API.
var (
	idFields            = []string{"id", "product_id", "productId", "_id", "sku"}
	nameFields          = []string{"name", "nombre", "title", "titulo"}
	descriptionFields   = []string{"description", "descripcion"}
	priceFields         = []string{"price", "precio", "precio_venta", "sale_price"}
	originalPriceFields = []string{"original_price", "originalPrice", "precio_original", "precio_anterior"}
	discountFields      = []string{"discount", "descuento", "discount_percentage"}
	imageFields         = []string{"image_url", "imageUrl", "image", "imagen", "imagen_url"}
	brandFields         = []string{"brand", "marca"}
	categoryFields      = []string{"category_id", "categoryId", "categoria_id", "category", "categoria"}
	stockFields         = []string{"stock", "inventario"}
)

// NormalizeProduct maps any accepted external product shape onto Product.
// A product without a resolvable id is rejected; every other field is optional.
func NormalizeProduct(raw map[string]any) (Product, error) {
	id := NormalizeID(first(raw, idFields))
	if id == "" {
		return Product{}, apperrors.InvalidInput("El producto no tiene un identificador válido")
	}

	p := Product{
		ID:          id,
		Name:        stringValue(first(raw, nameFields)),
		Description: stringValue(first(raw, descriptionFields)),
		Brand:       stringValue(first(raw, brandFields)),
		CategoryID:  NormalizeID(first(raw, categoryFields)),
		ImageURL:    imageValue(raw),
		Active:      true,
	}

	var err error
	if p.Price, err = parseAmount(first(raw, priceFields)); err != nil || p.Price < 0 {
		return Product{}, apperrors.InvalidInput(fmt.Sprintf("Precio inválido para el producto %s", id))
	}
	// Malformed optional numbers are dropped instead of failing the product.
	p.OriginalPrice, _ = parseAmount(first(raw, originalPriceFields))
	if d, err := parseAmount(first(raw, discountFields)); err == nil {
		p.Discount = int(d)
	}
	if s, err := parseAmount(first(raw, stockFields)); err == nil {
		p.Stock = int(s)
	}
	if p.Discount == 0 && p.OriginalPrice > p.Price && p.OriginalPrice > 0 {
		p.Discount = int(math.Round(float64(p.OriginalPrice-p.Price) * 100 / float64(p.OriginalPrice)))
	}

	return p, nil
}

// NormalizeProductJSON decodes a JSON object and normalizes it.
func NormalizeProductJSON(data []byte) (Product, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Product{}, apperrors.InvalidInput("Producto con formato inválido")
	}
	return NormalizeProduct(raw)
}

// NormalizeID turns an id of any accepted type into its comparison key, so
// 42, 42.0, "42" and " 42 " are the same product.
func NormalizeID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case json.Number:
		return NormalizeID(string(id))
	case float64:
		if id == math.Trunc(id) && math.Abs(id) < 1e15 {
			return strconv.FormatInt(int64(id), 10)
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	case float32:
		return NormalizeID(float64(id))
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case uint:
		return strconv.FormatUint(uint64(id), 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	case fmt.Stringer:
		return strings.TrimSpace(id.String())
	default:
		return strings.TrimSpace(fmt.Sprint(id))
	}
}

// SameID reports whether two ids refer to the same product.
func SameID(a, b any) bool {
	na := NormalizeID(a)
	return na != "" && na == NormalizeID(b)
}

func first(raw map[string]any, keys []string) any {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return NormalizeID(v)
}

func imageValue(raw map[string]any) string {
	if v := first(raw, imageFields); v != nil {
		return stringValue(v)
	}
	for _, key := range []string{"images", "imagenes"} {
		list, ok := raw[key].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		switch img := list[0].(type) {
		case string:
			return strings.TrimSpace(img)
		case map[string]any:
			return stringValue(first(img, []string{"url", "src"}))
		}
	}
	return ""
}

// ErrFractionalAmount rejects amounts with a fractional part. Prices are
// whole Chilean pesos, which have no minor unit.
var ErrFractionalAmount = errors.New("amount is not a whole number")

// parseAmount accepts numbers and numeric strings written with Chilean
// conventions: "$12.990" is twelve thousand nine hundred ninety and
// "12.990,00" uses a decimal comma. Fractional values are rejected rather
// than rounded.
func parseAmount(v any) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return wholeAmount(n)
	case float32:
		return wholeAmount(float64(n))
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case json.Number:
		return parseAmount(string(n))
	case string:
		return parseAmountString(n)
	default:
		return 0, fmt.Errorf("unsupported amount type %T", v)
	}
}

func parseAmountString(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "CLP")
	s = strings.TrimSpace(strings.TrimPrefix(s, "$"))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, nil
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else if isThousandsGrouped(s) {
		s = strings.ReplaceAll(s, ".", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return wholeAmount(f)
}

func wholeAmount(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1<<63 {
		return 0, fmt.Errorf("amount %v out of range", f)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v", ErrFractionalAmount, f)
	}
	return int64(f), nil
}

// isThousandsGrouped reports whether dots in s separate groups of three digits.
func isThousandsGrouped(s string) bool {
	parts := strings.Split(strings.TrimPrefix(s, "-"), ".")
	if len(parts) < 2 || len(parts[0]) == 0 || len(parts[0]) > 3 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}
