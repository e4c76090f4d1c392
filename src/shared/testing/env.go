package testing

import "os"

func SetTestEnv() {
	os.Setenv("ENVIRONMENT", "test")
}
