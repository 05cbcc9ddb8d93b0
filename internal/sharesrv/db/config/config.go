package config

import (
	"fmt"
)

type dbconncfg struct {
	host     string
	port     int
	dbname   string
	user     string
	password string
	sslmode  string
}

var lumenSharesDbConn *dbconncfg

func init() {
	lumenSharesDbConn = &dbconncfg{
		host:     "localhost",
		port:     5432,
		user:     "shares_api",
		password: "abc@123",
		dbname:   "lumenshares",
		sslmode:  "disable",
	}
}

func LumenSharesDsn() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		lumenSharesDbConn.host, lumenSharesDbConn.port, lumenSharesDbConn.user,
		lumenSharesDbConn.password, lumenSharesDbConn.dbname, lumenSharesDbConn.sslmode)
}
