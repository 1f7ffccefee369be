/*
Copyright © 2018 the RCE authors.
This file is part of RCE.

RCE is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

RCE is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with RCE.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command rce is a command-line interface for the RCE
// radiative-convective equilibrium model.
package main

import (
	"fmt"
	"os"

	"github.com/rcemodel/rce/rceutil"
)

func main() {
	if err := rceutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
