package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/apiclient"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/cart"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/persist"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/wishlist"
)

const usage = `uso: shopper <comando> [argumentos]

catálogo:
  products [-search texto] [-category id] [-refresh]
  product <id>
  featured
  notices
  discount <código>

sesión:
  login <email> <contraseña>
  register <nombre> <email> <contraseña>
  logout
  whoami

carrito:
  cart
  cart add [-note texto] <id> [cantidad]
  cart remove <id>
  cart qty <id> <cantidad>
  cart note <id> <texto>
  cart clear

deseos:
  wishlist
  wishlist toggle <id>
  wishlist move <id>

pago:
  checkout -name N -email E -address D [-phone T] [-city C] [-code CÓDIGO]
  commit <token>
`

var errUsage = errors.New("argumentos inválidos")

// shopper runs CLI commands against the API and the local cart/wishlist.
type shopper struct {
	api       *apiclient.Client
	cart      *cart.Store
	wishlist  *wishlist.Store
	out       io.Writer
	returnURL string
}

func (s *shopper) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(s.out, usage)
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "products":
		return s.products(ctx, rest)
	case "product":
		return s.product(ctx, rest)
	case "featured":
		return s.featured(ctx)
	case "notices":
		return s.notices(ctx)
	case "discount":
		return s.discount(ctx, rest)
	case "login":
		return s.login(ctx, rest)
	case "register":
		return s.register(ctx, rest)
	case "logout":
		if err := s.api.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Sesión cerrada")
		return nil
	case "whoami":
		return s.whoami(ctx)
	case "cart":
		return s.cartCmd(ctx, rest)
	case "wishlist":
		return s.wishlistCmd(ctx, rest)
	case "checkout":
		return s.checkout(ctx, rest)
	case "commit":
		return s.commit(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(s.out, usage)
		return nil
	default:
		fmt.Fprint(s.out, usage)
		return fmt.Errorf("comando desconocido %q: %w", cmd, errUsage)
	}
}

func (s *shopper) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	fs.SetOutput(s.out)
	search := fs.String("search", "", "texto a buscar")
	category := fs.String("category", "", "id de categoría")
	refresh := fs.Bool("refresh", false, "ignorar la caché")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	var (
		products []domain.Product
		err      error
	)
	if *search != "" || *category != "" {
		products, err = s.api.SearchProducts(ctx, domain.ProductFilter{Search: *search, CategoryID: *category})
	} else {
		products, err = s.api.GetProducts(ctx, *refresh)
	}
	if err != nil {
		return err
	}
	s.printProducts(products)
	return nil
}

func (s *shopper) featured(ctx context.Context) error {
	products, err := s.api.GetFeaturedProducts(ctx)
	if err != nil {
		return err
	}
	s.printProducts(products)
	return nil
}

func (s *shopper) printProducts(products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(s.out, "No hay productos")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNOMBRE\tPRECIO\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", p.ID, p.Name, domain.FormatCLP(p.Price), p.Stock)
	}
	_ = tw.Flush()
}

func (s *shopper) product(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	p, err := s.api.GetProduct(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s (%s)\n%s\nPrecio: %s\n", p.Name, p.ID, p.Description, domain.FormatCLP(p.Price))
	if p.OriginalPrice > p.Price {
		fmt.Fprintf(s.out, "Antes: %s (-%d%%)\n", domain.FormatCLP(p.OriginalPrice), p.Discount)
	}
	fmt.Fprintf(s.out, "Stock: %d\n", p.Stock)
	if s.wishlist.IsInWishlist(p.ID) {
		fmt.Fprintln(s.out, "En tu lista de deseos")
	}
	return nil
}

func (s *shopper) notices(ctx context.Context) error {
	notices, err := s.api.ActiveNotices(ctx)
	if err != nil {
		return err
	}
	if len(notices) == 0 {
		fmt.Fprintln(s.out, "Sin avisos")
		return nil
	}
	for _, n := range notices {
		fmt.Fprintf(s.out, "[%s] %s: %s\n", n.Type, n.Title, n.Message)
	}
	return nil
}

func (s *shopper) discount(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	v, err := s.api.ValidateDiscountCode(ctx, args[0], s.cart.Subtotal())
	if err != nil {
		return err
	}
	if !v.Valid {
		fmt.Fprintln(s.out, v.Message)
		return nil
	}
	fmt.Fprintf(s.out, "%s: descuento de %s, total %s\n",
		v.Code, domain.FormatCLP(v.DiscountAmount), domain.FormatCLP(s.cart.Total(v.DiscountAmount)))
	return nil
}

func (s *shopper) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	sess, err := s.api.Login(ctx, apiclient.LoginInput{Email: args[0], Password: args[1]})
	if err != nil {
		return err
	}
	name := args[0]
	if sess.User != nil {
		name = sess.User.Name
	}
	fmt.Fprintf(s.out, "Hola %s\n", name)
	return nil
}

func (s *shopper) register(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	if _, err := s.api.Register(ctx, apiclient.RegisterInput{Name: args[0], Email: args[1], Password: args[2]}); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Cuenta creada para %s\n", args[1])
	return nil
}

func (s *shopper) whoami(ctx context.Context) error {
	u, ok := s.api.CurrentUser(ctx)
	if !ok {
		fmt.Fprintln(s.out, "Sin sesión")
		return nil
	}
	fmt.Fprintf(s.out, "%s <%s> (%s)\n", u.Name, u.Email, u.Role)
	return nil
}

func (s *shopper) cartCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		s.printCart()
		return nil
	}
	var out persist.Outcome
	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("cart add", flag.ContinueOnError)
		fs.SetOutput(s.out)
		note := fs.String("note", "", "nota para el producto")
		if err := fs.Parse(args[1:]); err != nil || fs.NArg() < 1 {
			return errUsage
		}
		qty := 1
		if fs.NArg() > 1 {
			n, err := strconv.Atoi(fs.Arg(1))
			if err != nil {
				return errUsage
			}
			qty = n
		}
		p, err := s.api.GetProduct(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		out = s.cart.Add(ctx, p, qty, *note)
	case "remove":
		if len(args) != 2 {
			return errUsage
		}
		out = s.cart.Remove(ctx, args[1])
	case "qty":
		if len(args) != 3 {
			return errUsage
		}
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return errUsage
		}
		out = s.cart.UpdateQuantity(ctx, args[1], n)
	case "note":
		if len(args) < 3 {
			return errUsage
		}
		out = s.cart.UpdateNote(ctx, args[1], strings.Join(args[2:], " "))
	case "clear":
		out = s.cart.Clear(ctx)
	default:
		return errUsage
	}
	s.warnUnsaved(out)
	s.printCart()
	return nil
}

func (s *shopper) printCart() {
	if s.cart.IsEmpty() {
		fmt.Fprintln(s.out, "El carrito está vacío")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCTO\tCANT.\tTOTAL\tNOTA")
	for _, it := range s.cart.Items() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", it.ID, it.Name, it.Quantity, domain.FormatCLP(it.LineTotal()), it.Note)
	}
	_ = tw.Flush()
	fmt.Fprintf(s.out, "%d productos, subtotal %s\n", s.cart.Count(), domain.FormatCLP(s.cart.Subtotal()))
}

func (s *shopper) wishlistCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		s.printWishlist()
		return nil
	}
	if len(args) != 2 {
		return errUsage
	}
	switch args[0] {
	case "toggle":
		p, err := s.api.GetProduct(ctx, args[1])
		if err != nil {
			return err
		}
		added, out := s.wishlist.Toggle(ctx, p)
		s.warnUnsaved(out)
		if added {
			fmt.Fprintf(s.out, "%s agregado a tu lista de deseos\n", p.Name)
		} else {
			fmt.Fprintf(s.out, "%s eliminado de tu lista de deseos\n", p.Name)
		}
	case "move":
		out, err := s.wishlist.MoveToCart(ctx, args[1], s.cart)
		if err != nil {
			return err
		}
		s.warnUnsaved(out)
		s.printCart()
	default:
		return errUsage
	}
	return nil
}

func (s *shopper) printWishlist() {
	items := s.wishlist.Items()
	if len(items) == 0 {
		fmt.Fprintln(s.out, "Tu lista de deseos está vacía")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCTO\tPRECIO\tAGREGADO")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Name, domain.FormatCLP(it.Price), it.AddedAt.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

func (s *shopper) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(s.out)
	var c domain.Customer
	fs.StringVar(&c.Name, "name", "", "nombre")
	fs.StringVar(&c.Email, "email", "", "email")
	fs.StringVar(&c.Address, "address", "", "dirección de despacho")
	fs.StringVar(&c.Phone, "phone", "", "teléfono")
	fs.StringVar(&c.City, "city", "", "ciudad")
	code := fs.String("code", "", "código de descuento")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if s.cart.IsEmpty() {
		return errors.New("el carrito está vacío")
	}

	tx, err := s.api.CreateTransaction(ctx, domain.CheckoutRequest{
		Customer:     c,
		Items:        domain.CheckoutItemsFromCart(s.cart.Items()),
		DiscountCode: *code,
	})
	if err != nil {
		return err
	}
	init, err := s.api.CreateWebpay(ctx, tx.ID, s.returnURL)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Orden de compra %s por %s\n", tx.BuyOrder, domain.FormatCLP(tx.Total))
	if tx.Discount > 0 {
		fmt.Fprintf(s.out, "Descuento aplicado: %s\n", domain.FormatCLP(tx.Discount))
	}
	fmt.Fprintf(s.out, "Paga en: %s?token_ws=%s\n", init.URL, init.Token)
	fmt.Fprintf(s.out, "Luego confirma con: shopper commit %s\n", init.Token)
	return nil
}

func (s *shopper) commit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	res, err := s.api.CommitWebpay(ctx, args[0])
	if err != nil {
		return err
	}
	if !res.Approved() {
		reason := res.Reason
		if reason == "" {
			reason = "pago rechazado"
		}
		fmt.Fprintf(s.out, "Pago no aprobado: %s\n", reason)
		return nil
	}

	s.warnUnsaved(s.cart.Clear(ctx))
	if res.Order != nil {
		fmt.Fprintf(s.out, "Pago aprobado. Pedido #%d por %s\n", res.Order.Number, domain.FormatCLP(res.Amount))
	} else {
		fmt.Fprintf(s.out, "Pago aprobado por %s\n", domain.FormatCLP(res.Amount))
	}
	return nil
}

func (s *shopper) warnUnsaved(out persist.Outcome) {
	if out.Err != nil && !out.Persisted {
		fmt.Fprintln(s.out, "Aviso: el cambio no se pudo guardar y se perderá al salir")
	}
}
