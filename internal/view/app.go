package view

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/guard"
	"github.com/fjod/go_cart/storefront/internal/pkg/logger"
)

const maxRedirects = 4

var (
	ErrUnknownPath   = errors.New("unknown path")
	ErrTooManyHops   = errors.New("too many redirects")
	ErrInvalidFilter = errors.New("invalid product filter")
)

// Page is the result of a navigation. View is one of *ProductList,
// *ProductDetail, *CartView, *Checkout, *OrderHistory or *Profile; it is nil
// for the login and register pages and while the session is resolving.
type Page struct {
	Path string
	// From is the originally requested path when the navigation was redirected.
	From    string
	Pending bool
	View    any
	// Err is a load failure. The view still holds whatever it had before.
	Err error
}

// App routes paths to views through the access guard.
type App struct {
	session Session
	cart    Cart
	catalog Catalog
	orders  OrderAPI
	log     *zap.Logger
}

func NewApp(s Session, c Cart, cat Catalog, orders OrderAPI, log *zap.Logger) *App {
	return &App{
		session: s,
		cart:    c,
		catalog: cat,
		orders:  orders,
		log:     logger.OrNop(log),
	}
}

// Visit navigates to target, following guard and view redirects.
func (a *App) Visit(ctx context.Context, target string) (Page, error) {
	from := ""
	for range maxRedirects {
		u, err := url.Parse(target)
		if err != nil {
			return Page{}, fmt.Errorf("url.Parse: %w", err)
		}
		path := cleanPath(u.Path)

		d := guard.Check(a.session.State(), path)
		switch d.Outcome {
		case guard.Pending:
			return Page{Path: path, From: from, Pending: true}, nil
		case guard.Redirect:
			a.log.Debug("guard redirect", zap.String("path", path), zap.String("to", d.To))
			if from == "" {
				from = path
			}
			target = d.To
			continue
		}

		page, next, err := a.mount(ctx, path, u.Query())
		if err != nil {
			return Page{}, err
		}
		if next != "" {
			if from == "" {
				from = path
			}
			target = next
			continue
		}
		page.From = from
		return page, nil
	}
	return Page{}, ErrTooManyHops
}

func (a *App) mount(ctx context.Context, path string, query url.Values) (Page, string, error) {
	page := Page{Path: path}

	switch {
	case path == "/" || path == "/products":
		filter, err := parseFilter(query)
		if err != nil {
			return Page{}, "", err
		}
		v := NewProductList(a.catalog, a.log)
		page.Err = v.Load(ctx, filter)
		page.View = v

	case strings.HasPrefix(path, "/products/"):
		v := NewProductDetail(a.catalog, a.cart, a.session, a.log)
		page.Err = v.Load(ctx, strings.TrimPrefix(path, "/products/"))
		page.View = v

	case path == "/cart":
		v := NewCartView(a.cart, a.catalog, a.log)
		v.Load(ctx)
		page.View = v

	case path == "/checkout":
		v := NewCheckout(a.cart, a.catalog, a.orders, a.session, a.log)
		if act := v.Mount(ctx); act.Navigate != "" {
			return Page{}, act.Navigate, nil
		}
		page.View = v

	case path == "/orders":
		v := NewOrderHistory(a.orders, a.session, a.log)
		page.Err = v.Load(ctx)
		page.View = v

	case path == "/profile":
		page.View = NewProfile(a.session)

	case path == guard.LoginPath || path == "/register":

	default:
		return Page{}, "", fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	return page, "", nil
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

func parseFilter(q url.Values) (domain.ProductFilter, error) {
	var f domain.ProductFilter
	if c := q.Get("category"); c != "" {
		category := domain.ProductCategory(c)
		if !category.Valid() {
			return f, fmt.Errorf("%w: category %q", ErrInvalidFilter, c)
		}
		f.Category = &category
	}
	if s := q.Get("featured"); s != "" {
		featured, err := strconv.ParseBool(s)
		if err != nil {
			return f, fmt.Errorf("%w: featured %q", ErrInvalidFilter, s)
		}
		f.Featured = &featured
	}
	return f, nil
}
