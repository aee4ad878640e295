package util

import (
	"fmt"

	"github.com/hetianyi/fdfs/common"
	"github.com/logrusorgru/aurora"
)

func PrintLogo() {
	fmt.Print(aurora.BrightCyan(`
   ________  _______________
  / ____/ / / ____/ ____/ _/   FDFS::v` + common.VERSION + `
 / /_  / / / /_  / /_   \ \    tracker/storage cluster client.
/ __/ / /_/ __/ / __/  _/ /    github.com/hetianyi/fdfs
/_/   \____/   /_/    /__/

`))
}
