package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/weft/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractDocument(name string) *codec.Element {
	label := codec.NewElement(codec.TagProperty).SetAttr(codec.AttrName, "Name")
	label.Value = name
	node := codec.NewElement(codec.TagEntity).
		SetAttr(codec.AttrName, "Nodes").
		SetAttr(codec.AttrFullType, "weft.Node").
		SetAttr(codec.AttrGuid, contractGuid).
		Append(label)
	return codec.NewElement("Graph").SetAttr("Version", "1").Append(node)
}

const contractGuid = "6f1c2a4e-8d3b-4c52-9e0a-1b2c3d4e5f60"

func attr(t *testing.T, el *codec.Element, name string) string {
	t.Helper()
	v, ok := el.Attr(name)
	require.True(t, ok, "missing attribute %s on %s", name, el.Tag)
	return v
}

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore
// implementation adheres to the interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	docID := "contract-test-doc-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, docID, contractDocument("Adder"))
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "Graph", loaded.Tag)
		assert.Equal(t, "1", attr(t, loaded, "Version"))

		nodes := loaded.Named("Nodes")
		require.Len(t, nodes, 1)
		node := nodes[0]
		assert.Equal(t, codec.TagEntity, node.Tag)
		assert.Equal(t, "weft.Node", attr(t, node, codec.AttrFullType))
		assert.Equal(t, contractGuid, attr(t, node, codec.AttrGuid))
		name := node.First("Name")
		require.NotNil(t, name)
		assert.Equal(t, "Adder", name.Value)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, docID, contractDocument("Before")))
		require.NoError(t, store.Save(ctx, docID, contractDocument("After")))

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, "After", loaded.First("Nodes").First("Name").Value)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+docID)
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, docID, contractDocument("Adder")))

		err := store.Delete(ctx, docID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, docID)
		assert.ErrorIs(t, err, ErrDocumentNotFound, "Load after Delete should return ErrDocumentNotFound")

		assert.NoError(t, store.Delete(ctx, docID), "Deleting twice should not fail")
	})

	t.Run("List", func(t *testing.T) {
		id1 := docID + "-1"
		id2 := docID + "-2"
		_ = store.Save(ctx, id1, contractDocument("One"))
		_ = store.Save(ctx, id2, contractDocument("Two"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
