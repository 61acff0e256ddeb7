package order

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tecshop_backend/internal/utils"
)

// DownloadInvoice rend la facture PDF de la commande (acheteur uniquement)
func DownloadInvoice(c *gin.Context) {
	orderID := c.Param("id")
	userID := c.GetString("user_id")

	order, err := loadOrder(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	if order.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette commande ne vous appartient pas"})
		return
	}

	pdf, err := utils.GenerateInvoicePDF(order)
	if err != nil {
		log.Printf("❌ Erreur génération facture: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération de la facture"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="facture_tecshop_`+orderID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// EmailInvoice renvoie la facture par email à l'acheteur
func EmailInvoice(c *gin.Context) {
	orderID := c.Param("id")
	userID := c.GetString("user_id")
	userEmail := c.GetString("email")

	order, err := loadOrder(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	if order.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette commande ne vous appartient pas"})
		return
	}

	pdf, err := utils.GenerateInvoicePDF(order)
	if err != nil {
		log.Printf("❌ Erreur génération facture: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération de la facture"})
		return
	}

	html := utils.GenerateOrderConfirmationHTML(order)
	if err := utils.SendConfirmationEmail(userEmail, "🧾 Votre facture TecShop", html, pdf); err != nil {
		log.Printf("❌ Erreur envoi facture: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur envoi de la facture"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Facture envoyée à " + userEmail})
}
