package cart

import "patypatii_back_end/internal/models"

// Merge fusionne un panier local (invité) dans le panier serveur au
// moment du login. Le résultat contient chaque ligne du serveur, plus
// chaque ligne locale dont le produit n'est pas déjà présent côté
// serveur : le serveur gagne en cas de conflit, les lignes locales
// orphelines sont préservées, jamais perdues.
func Merge(server, local []models.CartItem) []models.CartItem {
	merged := make([]models.CartItem, 0, len(server)+len(local))
	seen := make(map[string]bool, len(server))

	for _, item := range server {
		merged = append(merged, item)
		seen[item.ProductID] = true
	}
	for _, item := range local {
		if !seen[item.ProductID] {
			merged = append(merged, item)
			seen[item.ProductID] = true
		}
	}
	return merged
}
