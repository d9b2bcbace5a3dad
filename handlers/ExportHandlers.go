package handlers

import (
	"fmt"
	"net/http"
	"time"

	"cotizador/services"
	"cotizador/utils"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportQuotesXLSX godoc
// @Summary      Export quotes as XLSX
// @Tags         export
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  "XLSX file"
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/quotes/export [get]
func ExportQuotesXLSX(svc *services.QuoteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetSlowQueryContext(c.Request.Context())
		defer cancel()

		quotes, err := svc.List(ctx)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		f := excelize.NewFile()
		defer f.Close()
		sheet := "Cotizaciones"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Folio", "Estado", "Cliente", "Empresa", "Vendedor", "Subtotal", "Impuestos", "Total", "Fecha"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		for row, q := range quotes {
			clientName, companyName, sellerName := "", "", ""
			if q.Client != nil {
				clientName = q.Client.Name
			}
			if q.SellerCompany != nil {
				companyName = q.SellerCompany.Name
			}
			if q.Seller != nil {
				sellerName = q.Seller.Name
			}
			values := []interface{}{
				q.Folio, q.Status, clientName, companyName, sellerName,
				q.Subtotal, q.Taxes, q.Total, q.CreatedAt.Format("02/01/2006"),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, v)
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		filename := fmt.Sprintf("cotizaciones-%s.xlsx", time.Now().Format("2006-01-02"))
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	}
}
