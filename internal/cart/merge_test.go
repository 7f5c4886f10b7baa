package cart

import (
	"testing"

	"patypatii_back_end/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMergeServerWinsOnConflict(t *testing.T) {
	server := []models.CartItem{{ProductID: "A", Quantity: 1, Price: 100}}
	local := []models.CartItem{
		{ProductID: "A", Quantity: 2, Price: 100},
		{ProductID: "B", Quantity: 3, Price: 50},
	}

	merged := Merge(server, local)

	assert.Len(t, merged, 2)
	assert.Equal(t, "A", merged[0].ProductID)
	assert.Equal(t, 1, merged[0].Quantity, "la quantité serveur gagne sur conflit")
	assert.Equal(t, "B", merged[1].ProductID)
	assert.Equal(t, 3, merged[1].Quantity, "les lignes locales orphelines sont conservées")
}

func TestMergeEmptyLocal(t *testing.T) {
	server := []models.CartItem{{ProductID: "A", Quantity: 2}}

	merged := Merge(server, nil)

	assert.Len(t, merged, 1)
	assert.Equal(t, server[0].ProductID, merged[0].ProductID)
}

func TestMergeEmptyServer(t *testing.T) {
	local := []models.CartItem{{ProductID: "A", Quantity: 2}, {ProductID: "B", Quantity: 1}}

	merged := Merge(nil, local)

	assert.Len(t, merged, 2)
}

func TestMergeBothEmpty(t *testing.T) {
	assert.Empty(t, Merge(nil, nil))
}
