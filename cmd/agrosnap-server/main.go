// @title AgroSnap API
// @version 1.0.0
// @description Crop image analysis and mandi price relay.
// @BasePath /api
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"agrosnap-server/internal/bootstrap"
)

func main() {
	fmt.Printf("[%s] [INFO] [Bootstrap] starting agrosnap-server...\n", time.Now().Format("2006-01-02 15:04:05.000"))
	if err := bootstrap.Run(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "agrosnap-server failed: %v\n", err)
		os.Exit(1)
	}
}
