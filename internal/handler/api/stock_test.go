//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"agora/internal/domain/stock"
	"agora/internal/handler/api"
	reqdto "agora/internal/handler/dto/request"
	apptest "agora/tests/common/httptest"
	commandsmock "agora/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type StockHandlerTestSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockStockCommands
	router       *gin.Engine
}

func (s *StockHandlerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockStockCommands(s.mockCtrl)

	handler := api.NewStockHandler(s.mockCommands)
	s.router = gin.New()
	internal := s.router.Group("/internal/stock")
	internal.POST("/reserve", handler.Reserve)
	internal.POST("/release", handler.Release)
	internal.POST("/commit/:orderNumber", handler.Commit)
}

func (s *StockHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestStockHandlerSuite(t *testing.T) {
	suite.Run(t, new(StockHandlerTestSuite))
}

func (s *StockHandlerTestSuite) TestReserve() {
	productID := uuid.New()
	req := reqdto.ReserveStockRequest{ProductID: productID, Quantity: 3, OrderNumber: "ORD-AB12CD34"}

	s.Run("204 on success", func() {
		s.mockCommands.EXPECT().Reserve(gomock.Any(), productID, int32(3), "ORD-AB12CD34").Return(nil)

		w := apptest.PerformRequest(s.T(), s.router, http.MethodPost, "/internal/stock/reserve", req, "")
		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("404 for an unknown product", func() {
		s.mockCommands.EXPECT().Reserve(gomock.Any(), productID, int32(3), "ORD-AB12CD34").
			Return(stock.ErrProductNotFound)

		w := apptest.PerformRequest(s.T(), s.router, http.MethodPost, "/internal/stock/reserve", req, "")
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("409 when quantity is short", func() {
		s.mockCommands.EXPECT().Reserve(gomock.Any(), productID, int32(3), "ORD-AB12CD34").
			Return(stock.ErrInsufficientStock)

		w := apptest.PerformRequest(s.T(), s.router, http.MethodPost, "/internal/stock/reserve", req, "")
		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("400 on a non-positive quantity", func() {
		bad := reqdto.ReserveStockRequest{ProductID: productID, Quantity: 0, OrderNumber: "ORD-AB12CD34"}

		w := apptest.PerformRequest(s.T(), s.router, http.MethodPost, "/internal/stock/reserve", bad, "")
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *StockHandlerTestSuite) TestRelease() {
	productID := uuid.New()
	req := reqdto.ReleaseStockRequest{ProductID: productID, Quantity: 2}

	s.Run("204 on success", func() {
		s.mockCommands.EXPECT().Release(gomock.Any(), productID, int32(2)).Return(nil)

		w := apptest.PerformRequest(s.T(), s.router, http.MethodPost, "/internal/stock/release", req, "")
		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("404 for an unknown product", func() {
		s.mockCommands.EXPECT().Release(gomock.Any(), productID, int32(2)).
			Return(stock.ErrProductNotFound)

		w := apptest.PerformRequest(s.T(), s.router, http.MethodPost, "/internal/stock/release", req, "")
		s.Equal(http.StatusNotFound, w.Code)
	})
}

func (s *StockHandlerTestSuite) TestCommit() {
	s.Run("204 on success", func() {
		s.mockCommands.EXPECT().Commit(gomock.Any(), "ORD-AB12CD34").Return(nil)

		w := apptest.PerformRequest(s.T(), s.router, http.MethodPost, "/internal/stock/commit/ORD-AB12CD34", nil, "")
		s.Equal(http.StatusNoContent, w.Code)
	})
}
