package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/codec"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactionMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	store := middleware.NewRedactionMiddleware([]string{"token", "password"})(underlying)
	ctx := context.Background()

	doc := secretGraph(t, "secret123")
	require.NoError(t, store.Save(ctx, "auth", doc))

	assert.Equal(t, "secret123", tokenOf(t, doc), "the caller's tree must not be modified")

	stored, err := underlying.Load(ctx, "auth")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, tokenOf(t, stored))

	g, _, err := domain.Load(stored)
	require.NoError(t, err)
	region, ok := g.Nodes()[0].Output("region")
	require.True(t, ok)
	assert.Equal(t, "eu-west-1", region.Value(), "unmatched properties are kept")
}

func TestRedactionMiddleware_LeafNames(t *testing.T) {
	underlying := memory.NewStore()
	store := middleware.NewRedactionMiddleware([]string{"^Password$"})(underlying)
	ctx := context.Background()

	secret := codec.NewElement(codec.TagProperty).SetAttr(codec.AttrName, "Password")
	secret.Value = "hunter2"
	user := codec.NewElement(codec.TagProperty).SetAttr(codec.AttrName, "User")
	user.Value = "jdoe"
	doc := codec.NewElement(codec.TagEntity).Append(secret, user)

	require.NoError(t, store.Save(ctx, "creds", doc))
	stored, err := underlying.Load(ctx, "creds")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, stored.First("Password").Value)
	assert.Equal(t, "jdoe", stored.First("User").Value)
}

func TestChain_Order(t *testing.T) {
	underlying := memory.NewStore()
	store := middleware.Chain(underlying,
		middleware.NewRedactionMiddleware([]string{"token"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "auth", secretGraph(t, "secret123")))

	stored, err := underlying.Load(ctx, "auth")
	require.NoError(t, err)
	assert.Equal(t, middleware.TagSealed, stored.Tag, "encryption is innermost")

	loaded, err := store.Load(ctx, "auth")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, tokenOf(t, loaded), "redaction ran before sealing")
}
