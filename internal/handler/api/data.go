package api

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"PairPulse/internal/domain/models"
	domrepo "PairPulse/internal/domain/repository"
	"PairPulse/internal/usecase"
	xhttp "PairPulse/pkg/http"
	xlogger "PairPulse/pkg/logger"
)

// csvColumns is the fixed tick CSV layout shared by export and upload.
var csvColumns = []string{"symbol", "ts", "price", "size"}

// MarketDataHandler serves the historical tick and bar endpoints plus the
// CSV export/import round trip.
type MarketDataHandler struct {
	logger *xlogger.Logger
	data   *usecase.MarketDataUseCase
}

func NewMarketDataHandler(logger *xlogger.Logger, data *usecase.MarketDataUseCase) *MarketDataHandler {
	return &MarketDataHandler{logger: logger, data: data}
}

func (h *MarketDataHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/data")
	g.GET("/history", h.History)
	g.GET("/bars", h.Bars)
	g.GET("/export", h.Export)
	g.POST("/upload", h.Upload)
	g.POST("/symbols", h.Watch)
}

func (h *MarketDataHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ticks, err := h.data.History(c.Request().Context(), strings.ToLower(req.Symbol), req.Limit)
	if err != nil {
		h.logger.Error("history load failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, ticks, int64(len(ticks)))
}

func (h *MarketDataHandler) Bars(c echo.Context) error {
	req := &models.BarsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)
	bars, err := h.data.Bars(c.Request().Context(), strings.ToLower(req.Symbol), tf, req.Limit)
	if err != nil {
		h.logger.Error("bars load failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, bars, int64(len(bars)))
}

func (h *MarketDataHandler) Export(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := strings.ToLower(req.Symbol)
	ticks, err := h.data.History(c.Request().Context(), symbol, req.Limit)
	if err != nil {
		h.logger.Error("export load failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s_ticks.csv"`, symbol))
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write(csvColumns); err != nil {
		return err
	}
	for _, t := range ticks {
		row := []string{
			t.Symbol,
			strconv.FormatInt(t.Ts.UnixMilli(), 10),
			strconv.FormatFloat(t.Price, 'f', -1, 64),
			strconv.FormatFloat(t.Size, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (h *MarketDataHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("csv file field missing").WithError(err))
	}
	f, err := fh.Open()
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("cannot open upload").WithError(err))
	}
	defer f.Close()

	ticks, parseErrs, err := parseTickCSV(f)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
	}
	inserted, skipped, err := h.data.ImportTicks(c.Request().Context(), ticks)
	if err != nil {
		h.logger.Error("csv import failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"inserted": inserted,
		"skipped":  skipped + parseErrs,
	})
}

func (h *MarketDataHandler) Watch(c echo.Context) error {
	req := &models.WatchSymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := strings.ToLower(req.Symbol)
	added := h.data.Watch(symbol)
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbol": symbol,
		"added":  added,
	})
}

// parseTickCSV reads the export layout back in. A leading header row is
// optional; rows that fail to parse are counted, not fatal.
func parseTickCSV(r io.Reader) ([]models.Tick, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvColumns)

	var ticks []models.Tick
	badRows := 0
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			badRows++
			continue
		}
		if first {
			first = false
			if strings.EqualFold(row[0], csvColumns[0]) {
				continue
			}
		}
		ts, err := usecase.ParseTickTime(row[1])
		if err != nil {
			badRows++
			continue
		}
		price, err1 := strconv.ParseFloat(row[2], 64)
		size, err2 := strconv.ParseFloat(row[3], 64)
		if err1 != nil || err2 != nil {
			badRows++
			continue
		}
		ticks = append(ticks, models.Tick{
			Symbol: strings.ToLower(row[0]),
			Ts:     ts,
			Price:  price,
			Size:   size,
		})
	}
	if len(ticks) == 0 && badRows == 0 {
		return nil, 0, fmt.Errorf("empty csv")
	}
	return ticks, badRows, nil
}
