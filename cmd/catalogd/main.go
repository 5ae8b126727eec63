// Command catalogd runs the catalog API and its maintenance tasks.
//
// @title                       Catalog API
// @version                     1.0
// @description                 Catalog backend with identity and access management.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
