package service

import (
	"context"
	"testing"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCreateProduct(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	svc := NewCatalogService(st)

	name := "Hoodie"
	id, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: &name, Price: models.NewFlex("250.00"), Desc: "warm"})
	require.NoError(t, err)

	p, err := svc.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Hoodie", p.Name)
	assert.Equal(t, "warm", p.Description)
	assert.Equal(t, models.ProductStatusIn, p.Status)

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	require.NoError(t, svc.DeleteProduct(ctx, id))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, id), ErrNotFound)

	_, err = svc.GetProduct(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogCreateProductValidation(t *testing.T) {
	svc := NewCatalogService(setupStore(t))
	ctx := context.Background()
	name := "Cap"

	var verr *ValidationError
	_, err := svc.CreateProduct(ctx, &CreateProductRequest{Price: models.NewFlex("10")})
	assert.ErrorAs(t, err, &verr)

	_, err = svc.CreateProduct(ctx, &CreateProductRequest{Name: &name})
	assert.ErrorAs(t, err, &verr)

	_, err = svc.CreateProduct(ctx, &CreateProductRequest{Name: &name, Price: models.NewFlex("-1")})
	assert.ErrorAs(t, err, &verr)
}

func TestParseShippingPolicy(t *testing.T) {
	p, err := ParseShippingPolicy("")
	require.NoError(t, err)
	assert.Equal(t, ShippingPerLine, p)

	p, err = ParseShippingPolicy("once")
	require.NoError(t, err)
	assert.Equal(t, ShippingOnce, p)

	_, err = ParseShippingPolicy("twice")
	assert.Error(t, err)
}
