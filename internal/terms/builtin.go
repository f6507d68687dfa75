// File: internal/terms/builtin.go
package terms

var builtin = []string{
	"start books at home",
	"exciting tips without equipment",
	"improve fitness for adults",
	"modern facts for adults",
	"start design",
	"traditional games tips weekend",
	"healthy painting history this year",
	"painting for families",
	"ways to animals",
	"beach electronics examples",
	"interesting beach fitness",
	"easy mountain animals",
	"classic art tricks",
	"beautiful beach painting",
	"cars tutorial fall",
	"swimming at home",
	"new finance tips",
	"discover finance without equipment",
	"explore marketing step by step",
	"explore classic fashion",
	"find top cycling",
	"photography for beginners",
	"modern real estate history",
	"meditation at home",
	"local music guide",
	"interesting fashion tricks",
	"America hiking trends",
	"city painting tricks",
	"outdoor travel recipes",
	"electronics techniques this week",
}

// Builtin returns a copy of the default term list.
func Builtin() []string {
	out := make([]string, len(builtin))
	copy(out, builtin)
	return out
}
