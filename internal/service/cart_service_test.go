package service

import (
	"context"
	"strconv"
	"testing"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceQuantity(t *testing.T) {
	cases := []struct {
		raw  models.Flex
		want int
	}{
		{models.NewFlex("3"), 3},
		{models.NewFlex("12"), 12},
		{models.NewFlex("0"), 1},
		{models.NewFlex("-2"), 1},
		{models.NewFlex("2.5"), 1},
		{models.NewFlex("3.0"), 1},
		{models.NewFlex("two"), 1},
		{models.NewFlex(""), 1},
		{models.Flex{}, 1},
		{models.NewFlex("99999999999999999999999"), 1},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, coerceQuantity(tc.raw), "input %q", tc.raw.String())
	}
}

func TestPrimaryImage(t *testing.T) {
	assert.Equal(t, "/uploads/a.jpg", PrimaryImage(" /uploads/a.jpg , /uploads/b.jpg"))
	assert.Equal(t, "/uploads/a.jpg", PrimaryImage("/uploads/a.jpg "))
	assert.Equal(t, "", PrimaryImage(""))
}

func TestAddLineThenListCart(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	svc := NewCartService(st)

	p := seedProduct(t, st, "Hoodie", "250")

	id, err := svc.AddLine(ctx, "cart", &AddLineRequest{
		ProductID: models.NewFlex(strconv.FormatInt(p.ID, 10)),
		Size:      models.NewFlex("M"),
		Color:     models.NewFlex("red"),
		Quantity:  models.NewFlex("2"),
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	lines, err := svc.ListCart(ctx, "cart")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, id, lines[0].ID)
	assert.Equal(t, p.ID, lines[0].ProductID)
	assert.Equal(t, "Hoodie", lines[0].Name)
	assert.True(t, decimal.NewFromInt(250).Equal(lines[0].Price))
	assert.Equal(t, "/uploads/front.jpg", lines[0].Image)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "M", lines[0].Size)

	other, err := svc.ListCart(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAddLineRequiresProduct(t *testing.T) {
	svc := NewCartService(setupStore(t))
	ctx := context.Background()

	_, err := svc.AddLine(ctx, "cart", &AddLineRequest{})
	assert.ErrorIs(t, err, ErrMissingProduct)

	_, err = svc.AddLine(ctx, "cart", &AddLineRequest{ProductID: models.NewFlex("0")})
	assert.ErrorIs(t, err, ErrMissingProduct)

	_, err = svc.AddLine(ctx, "cart", &AddLineRequest{ProductID: models.NewFlex("abc")})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAddLineAcceptsUnknownProduct(t *testing.T) {
	st := setupStore(t)
	svc := NewCartService(st)

	_, err := svc.AddLine(context.Background(), "cart", &AddLineRequest{ProductID: models.NewFlex("404")})
	require.NoError(t, err)

	lines, err := st.GetCartLines(context.Background(), "cart")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestUpdateLine(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	svc := NewCartService(st)

	p := seedProduct(t, st, "Tee", "100")
	lineID := seedLine(t, st, "cart", p.ID, 1)

	require.NoError(t, svc.UpdateLine(ctx, "cart", lineID, &UpdateLineRequest{Quantity: models.NewFlex("4")}))
	lines, err := svc.ListCart(ctx, "cart")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)

	var verr *ValidationError
	assert.ErrorAs(t, svc.UpdateLine(ctx, "cart", lineID, &UpdateLineRequest{}), &verr)
	assert.ErrorAs(t, svc.UpdateLine(ctx, "cart", lineID, &UpdateLineRequest{Quantity: models.NewFlex("lots")}), &verr)

	assert.ErrorIs(t, svc.UpdateLine(ctx, "intruder", lineID, &UpdateLineRequest{Quantity: models.NewFlex("9")}), ErrNotFound)
	assert.ErrorIs(t, svc.UpdateLine(ctx, "intruder", lineID, &UpdateLineRequest{Quantity: models.NewFlex("0")}), ErrNotFound)

	require.NoError(t, svc.UpdateLine(ctx, "cart", lineID, &UpdateLineRequest{Quantity: models.NewFlex("0")}))
	lines, err = svc.ListCart(ctx, "cart")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestRemoveLine(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	svc := NewCartService(st)

	p := seedProduct(t, st, "Tee", "100")
	lineID := seedLine(t, st, "cart", p.ID, 1)

	assert.ErrorIs(t, svc.RemoveLine(ctx, "intruder", lineID), ErrNotFound)
	require.NoError(t, svc.RemoveLine(ctx, "cart", lineID))
	assert.ErrorIs(t, svc.RemoveLine(ctx, "cart", lineID), ErrNotFound)
}
