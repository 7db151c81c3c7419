package cmd

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mailsort/internal/apihandlers"
)

var (
	serveAddr string
	servePort string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the classifier as an HTTP API server",
	Long: `Starts an HTTP server exposing classification via a RESTful API, so
other tools or UIs can classify messages without shelling out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()

		router := gin.Default()

		apiHandler := apihandlers.NewAPIHandler(appInstance)

		v1 := router.Group("/api/v1")
		{
			v1.POST("/classify", apiHandler.ClassifyHandler)
			v1.POST("/classify/batch", apiHandler.BatchClassifyHandler)
			v1.GET("/categories", apiHandler.CategoriesHandler)
		}

		router.GET("/health", func(c *gin.Context) {
			if appInstance.Cache != nil {
				if err := appInstance.Cache.Ping(c.Request.Context()); err != nil {
					c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "cache": err.Error()})
					return
				}
			}
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		listenAddr := fmt.Sprintf("%s:%s", serveAddr, servePort)
		log.Infof("Starting API server on http://%s", listenAddr)
		if err := router.Run(listenAddr); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost", "Listen address")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Listen port")
}
