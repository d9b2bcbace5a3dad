package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"cotizador/models"
	"cotizador/services"
	"cotizador/utils"

	"github.com/gin-gonic/gin"
)

// respondQuoteError maps the service error taxonomy onto HTTP statuses.
// Unrecognized errors propagate as opaque 500s with the raw message.
func respondQuoteError(c *gin.Context, err error) {
	var (
		vErr *services.ValidationError
		rErr *services.ReferenceNotFoundError
		cErr *services.ConstraintViolationError
		dErr *services.DeliveryError
	)
	switch {
	case errors.As(err, &vErr):
		utils.Fail(c, http.StatusBadRequest, vErr.Error())
	case errors.As(err, &rErr):
		utils.Fail(c, http.StatusBadRequest, rErr.Error())
	case errors.As(err, &cErr):
		utils.Fail(c, http.StatusBadRequest, cErr.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.Fail(c, http.StatusNotFound, "Not found")
	case errors.As(err, &dErr):
		utils.Fail(c, http.StatusBadGateway, dErr.Error())
	default:
		utils.Fail(c, http.StatusInternalServerError, err.Error())
	}
}

// CreateQuote godoc
// @Summary      Create quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        body  body      models.CreateQuoteRequest  true  "Quote"
// @Success      200   {object}  models.Response{data=models.Quote}
// @Failure      400   {object}  models.ErrorResponse
// @Router       /api/quotes [post]
func CreateQuote(svc *services.QuoteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateQuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		quote, err := svc.Create(ctx, req)
		if err != nil {
			respondQuoteError(c, err)
			return
		}
		utils.OK(c, http.StatusOK, quote)
	}
}

// GetQuotes godoc
// @Summary      List quotes
// @Tags         quotes
// @Produce      json
// @Success      200  {object}  models.Response{data=[]models.Quote}
// @Router       /api/quotes [get]
func GetQuotes(svc *services.QuoteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		quotes, err := svc.List(ctx)
		if err != nil {
			respondQuoteError(c, err)
			return
		}
		utils.OK(c, http.StatusOK, quotes)
	}
}

// GetQuoteByID godoc
// @Summary      Get quote by ID
// @Tags         quotes
// @Param        id   path  int  true  "Quote ID"
// @Success      200  {object}  models.Response{data=models.Quote}
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/quotes/{id} [get]
func GetQuoteByID(svc *services.QuoteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid id")
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		quote, err := svc.Get(ctx, id)
		if err != nil {
			respondQuoteError(c, err)
			return
		}
		utils.OK(c, http.StatusOK, quote)
	}
}

// UpdateQuote godoc
// @Summary      Update quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id    path  int                        true  "Quote ID"
// @Param        body  body  models.UpdateQuoteRequest  true  "Fields to replace"
// @Success      200   {object}  models.Response{data=models.Quote}
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/quotes/{id} [put]
func UpdateQuote(svc *services.QuoteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid id")
			return
		}
		var req models.UpdateQuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		quote, err := svc.Update(ctx, id, req)
		if err != nil {
			respondQuoteError(c, err)
			return
		}
		utils.OK(c, http.StatusOK, quote)
	}
}

// DeleteQuote godoc
// @Summary      Delete quote
// @Tags         quotes
// @Param        id   path  int  true  "Quote ID"
// @Success      200  {object}  models.Response
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/quotes/{id} [delete]
func DeleteQuote(svc *services.QuoteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid id")
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		if err := svc.Delete(ctx, id); err != nil {
			respondQuoteError(c, err)
			return
		}
		utils.OK(c, http.StatusOK, gin.H{"id": id})
	}
}

// DownloadQuotePDF renders the plain quote document and streams it as a
// PDF attachment.
// @Summary      Download quote PDF
// @Tags         quotes
// @Param        id   path  int  true  "Quote ID"
// @Success      200  "PDF file"
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/quotes/{id}/pdf [get]
func DownloadQuotePDF(svc *services.QuoteService, renderer *services.Renderer, converter services.Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid id")
			return
		}

		ctx, cancel := utils.GetSlowQueryContext(c.Request.Context())
		defer cancel()

		quote, err := svc.Get(ctx, id)
		if err != nil {
			respondQuoteError(c, err)
			return
		}

		htmlDoc, err := renderer.RenderQuotePDFHTML(quote)
		if err != nil {
			respondQuoteError(c, err)
			return
		}
		pdfBytes, err := converter.Convert(htmlDoc, services.WithFolioQR(quote.Folio))
		if err != nil {
			respondQuoteError(c, &services.DeliveryError{Stage: "convert", Err: err})
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=quote-%s.pdf", quote.Folio))
		c.Data(http.StatusOK, "application/pdf", pdfBytes)
	}
}

// SendQuoteEmail renders the branded quote document, converts it to PDF
// and emails it, recording the attempt in the email log.
// @Summary      Email quote with generated PDF
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id    path  int                           true  "Quote ID"
// @Param        body  body  models.SendQuoteEmailRequest  true  "Recipient"
// @Success      200   {object}  models.Response
// @Failure      404   {object}  models.ErrorResponse
// @Failure      502   {object}  models.ErrorResponse
// @Router       /api/quotes/{id}/send-email [post]
func SendQuoteEmail(svc *services.QuoteService, renderer *services.Renderer, converter services.Converter, mailer *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid id")
			return
		}
		var req models.SendQuoteEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := utils.GetSlowQueryContext(c.Request.Context())
		defer cancel()

		quote, err := svc.Get(ctx, id)
		if err != nil {
			respondQuoteError(c, err)
			return
		}

		htmlDoc, err := renderer.RenderQuoteEmailHTML(quote, req.Message)
		if err != nil {
			respondQuoteError(c, err)
			return
		}
		pdfBytes, err := converter.Convert(htmlDoc, services.WithFolioQR(quote.Folio))
		if err != nil {
			respondQuoteError(c, &services.DeliveryError{Stage: "convert", Err: err})
			return
		}

		subject := req.Subject
		if subject == "" {
			companyName := ""
			if quote.SellerCompany != nil {
				companyName = quote.SellerCompany.Name
			}
			subject = fmt.Sprintf("Cotización %s - %s", quote.Folio, companyName)
		}
		attachmentName := fmt.Sprintf("cotizacion-%s.pdf", quote.Folio)

		messageID, err := mailer.Send(req.To, subject, htmlDoc, []services.Attachment{
			{Filename: attachmentName, Content: pdfBytes},
		})
		if err != nil {
			respondQuoteError(c, err)
			return
		}

		mailer.LogAttempt(req.To, subject, req.Message, attachmentName)

		utils.OKMessage(c, http.StatusOK, "Email enviado", gin.H{"messageId": messageID})
	}
}

// SendQuoteEmailWithPDF attaches a client-rendered PDF received as
// multipart upload and emails it without server-side rendering.
// @Summary      Email quote with uploaded PDF
// @Tags         quotes
// @Accept       multipart/form-data
// @Produce      json
// @Param        id       path      int     true  "Quote ID"
// @Param        pdf      formData  file    true  "Pre-rendered PDF"
// @Param        to       formData  string  true  "Recipient"
// @Param        subject  formData  string  false "Subject"
// @Param        message  formData  string  false "Message"
// @Success      200  {object}  models.Response
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/quotes/{id}/send-email-with-pdf [post]
func SendQuoteEmailWithPDF(svc *services.QuoteService, mailer *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid id")
			return
		}

		fileHeader, err := c.FormFile("pdf")
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "No se recibió el archivo PDF")
			return
		}
		to := c.PostForm("to")
		if to == "" {
			utils.Fail(c, http.StatusBadRequest, "to is required")
			return
		}

		ctx, cancel := utils.GetSlowQueryContext(c.Request.Context())
		defer cancel()

		quote, err := svc.Get(ctx, id)
		if err != nil {
			respondQuoteError(c, err)
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		defer file.Close()
		content, err := io.ReadAll(file)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		subject := c.PostForm("subject")
		if subject == "" {
			companyName := ""
			if quote.SellerCompany != nil {
				companyName = quote.SellerCompany.Name
			}
			subject = fmt.Sprintf("Cotización %s - %s", quote.Folio, companyName)
		}
		message := c.PostForm("message")
		if message == "" {
			message = "Adjunto encontrará la cotización solicitada."
		}

		messageID, err := mailer.Send(to, subject, message, []services.Attachment{
			{Filename: fileHeader.Filename, Content: content},
		})
		if err != nil {
			respondQuoteError(c, err)
			return
		}

		mailer.LogAttempt(to, subject, message, fileHeader.Filename)

		utils.OKMessage(c, http.StatusOK, "Email enviado con PDF adjunto", gin.H{"messageId": messageID})
	}
}
