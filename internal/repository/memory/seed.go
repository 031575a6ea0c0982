package memory

import (
	"time"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
)

// SeedData is the catalog the mock backend starts with.
type SeedData struct {
	Products   []domain.Product
	Categories []domain.Category
	Suppliers  []domain.Supplier
	Codes      []domain.DiscountCode
	Notices    []domain.Notice
}

// Seed returns the development catalog with timestamps set to now.
func Seed(now time.Time) SeedData {
	now = now.UTC()
	expires := now.AddDate(0, 6, 0)
	expired := now.AddDate(0, -1, 0)

	products := []domain.Product{
		{ID: "1", Name: "Polera Algodón Orgánico", Description: "Polera unisex de algodón orgánico certificado.", Price: 12990, OriginalPrice: 15990, Discount: 19, ImageURL: "/img/productos/polera-organica.jpg", Brand: "Andes Wear", CategoryID: "cat-ropa", SupplierID: "sup-textil", Stock: 40, Featured: true, Active: true},
		{ID: "2", Name: "Polerón Canguro", Description: "Polerón con capucha y bolsillo canguro.", Price: 24990, ImageURL: "/img/productos/poleron-canguro.jpg", Brand: "Andes Wear", CategoryID: "cat-ropa", SupplierID: "sup-textil", Stock: 25, Active: true},
		{ID: "3", Name: "Jockey Bordado", Description: "Jockey de gabardina con logo bordado.", Price: 9990, ImageURL: "/img/productos/jockey.jpg", Brand: "Cumbre", CategoryID: "cat-accesorios", SupplierID: "sup-textil", Stock: 60, Featured: true, Active: true},
		{ID: "4", Name: "Mochila Urbana 20L", Description: "Mochila impermeable con compartimento para notebook.", Price: 34990, OriginalPrice: 42990, Discount: 19, ImageURL: "/img/productos/mochila.jpg", Brand: "Cumbre", CategoryID: "cat-accesorios", SupplierID: "sup-outdoor", Stock: 15, Featured: true, Active: true},
		{ID: "5", Name: "Taza Cerámica Esmaltada", Description: "Taza de 350 ml hecha a mano en Pomaire.", Price: 6990, ImageURL: "/img/productos/taza.jpg", Brand: "Pomaire", CategoryID: "cat-hogar", SupplierID: "sup-artesania", Stock: 80, Active: true},
		{ID: "6", Name: "Manta de Lana", Description: "Manta tejida a telar, lana de oveja.", Price: 45990, ImageURL: "/img/productos/manta.jpg", Brand: "Chiloé Textil", CategoryID: "cat-hogar", SupplierID: "sup-artesania", Stock: 8, Featured: true, Active: true},
		{ID: "7", Name: "Zapatilla Trekking", Description: "Zapatilla de trekking con suela antideslizante.", Price: 59990, OriginalPrice: 69990, Discount: 14, ImageURL: "/img/productos/zapatilla.jpg", Brand: "Cumbre", CategoryID: "cat-calzado", SupplierID: "sup-outdoor", Stock: 12, Active: true},
		{ID: "8", Name: "Sandalia Cuero", Description: "Sandalia de cuero curtido vegetal.", Price: 29990, ImageURL: "/img/productos/sandalia.jpg", Brand: "Andes Wear", CategoryID: "cat-calzado", SupplierID: "sup-outdoor", Stock: 0, Active: true},
		{ID: "9", Name: "Botella Térmica 750ml", Description: "Mantiene el frío 24 horas y el calor 12.", Price: 15990, ImageURL: "/img/productos/botella.jpg", Brand: "Cumbre", CategoryID: "cat-accesorios", SupplierID: "sup-outdoor", Stock: 35, Active: true},
		{ID: "10", Name: "Cojín Mapuche", Description: "Funda de cojín con diseño tradicional.", Price: 13990, ImageURL: "/img/productos/cojin.jpg", Brand: "Chiloé Textil", CategoryID: "cat-hogar", SupplierID: "sup-artesania", Stock: 20, Active: false},
	}
	for i := range products {
		products[i].CreatedAt = now.Add(-time.Duration(len(products)-i) * time.Hour)
		products[i].UpdatedAt = products[i].CreatedAt
	}

	return SeedData{
		Products: products,
		Categories: []domain.Category{
			{ID: "cat-ropa", Name: "Ropa", Slug: "ropa", Description: "Poleras, polerones y más.", Active: true},
			{ID: "cat-accesorios", Name: "Accesorios", Slug: "accesorios", Active: true},
			{ID: "cat-hogar", Name: "Hogar", Slug: "hogar", Description: "Artesanía para la casa.", Active: true},
			{ID: "cat-calzado", Name: "Calzado", Slug: "calzado", Active: true},
		},
		Suppliers: []domain.Supplier{
			{ID: "sup-textil", Name: "Textil del Sur SpA", Email: "ventas@textildelsur.cl", Phone: "+56 2 2345 6789", Contact: "Marcela Rojas", Active: true},
			{ID: "sup-outdoor", Name: "Outdoor Chile Ltda.", Email: "contacto@outdoorchile.cl", Contact: "Felipe Soto", Active: true},
			{ID: "sup-artesania", Name: "Cooperativa Artesanos Unidos", Email: "coop@artesanos.cl", Contact: "Rosa Huenchumil", Active: true},
		},
		Codes: []domain.DiscountCode{
			{ID: "dc-1", Code: "BIENVENIDA10", Description: "10% en tu primera compra", Type: domain.DiscountTypePercentage, Value: 10, MaxDiscount: 10000, Active: true, ExpiresAt: &expires},
			{ID: "dc-2", Code: "DESPACHO5000", Description: "$5.000 de descuento sobre $30.000", Type: domain.DiscountTypeFixedAmount, Value: 5000, MinOrderAmount: 30000, MaxUses: 100, Active: true},
			{ID: "dc-3", Code: "VERANO20", Description: "Campaña de verano", Type: domain.DiscountTypePercentage, Value: 20, Active: true, ExpiresAt: &expired},
			{ID: "dc-4", Code: "PAUSADO", Type: domain.DiscountTypeFixedAmount, Value: 1000, Active: false},
		},
		Notices: []domain.Notice{
			{ID: "n-1", Title: "Despacho gratis", Message: "Despacho gratis en compras sobre $40.000 en la Región Metropolitana.", Type: "info", Priority: 2, Active: true},
			{ID: "n-2", Title: "Cyber", Message: "Hasta 30% de descuento en accesorios.", Type: "promo", Priority: 1, Active: true, EndsAt: &expires},
			{ID: "n-3", Title: "Mantención", Message: "El sitio estuvo en mantención.", Type: "warning", Priority: 0, Active: true, EndsAt: &expired},
		},
	}
}
