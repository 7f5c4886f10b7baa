package utils

import (
	"fmt"

	"patypatii_back_end/internal/models"
)

// GenerateOrderConfirmationHTML génère le HTML de confirmation de commande
func GenerateOrderConfirmationHTML(order models.Order) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 8px; border: 1px solid #ddd;">KSh %.2f</td>
				<td style="padding: 8px; border: 1px solid #ddd;">KSh %.2f</td>
			</tr>`, item.Name, item.Quantity, item.Price, item.Subtotal)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Merci pour votre commande !</h2>
		<p>Bonjour %s,</p>
		<p>Votre commande <strong>%s</strong> a bien été confirmée.</p>

		<h3>Détails de la commande</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Produit</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>%s</tbody>
		</table>

		<table style="width: 100%%; margin: 10px 0;">
			<tr><td>Sous-total</td><td style="text-align: right;">KSh %.2f</td></tr>
			<tr><td>Réduction</td><td style="text-align: right;">− KSh %.2f</td></tr>
			<tr><td>TVA (16%%)</td><td style="text-align: right;">KSh %.2f</td></tr>
			<tr><td>Livraison</td><td style="text-align: right;">KSh %.2f</td></tr>
			<tr><td><strong>Total</strong></td><td style="text-align: right;"><strong>KSh %.2f</strong></td></tr>
		</table>

		<h3>Adresse de livraison</h3>
		<p>%s<br>%s<br>%s</p>

		<p style="color: #777; font-size: 12px;">Patypatii Furniture — Nairobi, Kenya</p>
	</div>
</body>
</html>`,
		order.ShippingAddress.FullName,
		order.OrderNumber,
		itemsHTML,
		order.Subtotal,
		order.Discount,
		order.Tax,
		order.Shipping,
		order.Total,
		order.ShippingAddress.FullName,
		order.ShippingAddress.AddressLine1,
		order.ShippingAddress.City,
	)
}
