package evaluator

import (
	"fmt"
	"math"

	"github.com/psil-lang/joy/pkg/joyerr"
	"github.com/psil-lang/joy/pkg/values"
)

// registerBuiltins installs every non-combinator builtin: arithmetic,
// stack shuffling, comparisons, type predicates, quotation and list
// operations, I/O, error introspection, and floating-point math.
func (e *Evaluator) registerBuiltins() {
	// Control.
	e.registerBuiltin("quit", builtinQuit)

	// Stack shuffling.
	e.registerBuiltin("pop", builtinPop)
	e.registerBuiltin("drop", builtinPop)
	e.registerBuiltin("dup", builtinDup)
	e.registerBuiltin("swap", builtinSwap)
	e.registerBuiltin("over", builtinOver)
	e.registerBuiltin("rot", builtinRot)
	e.registerBuiltin("nip", builtinNip)
	e.registerBuiltin("tuck", builtinTuck)
	e.registerBuiltin("depth", builtinDepth)
	e.registerBuiltin("roll", builtinRoll)
	e.registerBuiltin("unroll", builtinUnroll)
	e.registerBuiltin("pick", builtinPick)

	// Arithmetic.
	e.registerBuiltin("+", builtinAdd)
	e.registerBuiltin("-", builtinSub)
	e.registerBuiltin("*", builtinMul)

	// Comparison.
	e.registerBuiltin(">", builtinGT)
	e.registerBuiltin("<", builtinLT)
	e.registerBuiltin("=", builtinEQ)
	e.registerBuiltin("<=", builtinLE)
	e.registerBuiltin(">=", builtinGE)
	e.registerBuiltin("!=", builtinNE)

	// Logic.
	e.registerBuiltin("and", builtinAnd)
	e.registerBuiltin("or", builtinOr)
	e.registerBuiltin("not", builtinNot)

	// Type predicates.
	e.registerBuiltin("number?", builtinIsNumber)
	e.registerBuiltin("integer?", builtinIsInteger)
	e.registerBuiltin("decimal?", builtinIsDecimal)
	e.registerBuiltin("text?", builtinIsText)
	e.registerBuiltin("boolean?", builtinIsBoolean)
	e.registerBuiltin("quotation?", builtinIsQuotation)
	e.registerBuiltin("symbol?", builtinIsSymbol)

	// Quotation manipulation.
	e.registerBuiltin("concat", builtinConcat)
	e.registerBuiltin("rest", builtinRest)
	e.registerBuiltin("size", builtinSize)
	e.registerBuiltin("cons", builtinCons)
	e.registerBuiltin("uncons", builtinUncons)
	e.registerBuiltin("first", builtinFirst)
	e.registerBuiltin("null?", builtinIsNull)
	e.registerBuiltin("empty?", builtinIsNull)
	e.registerBuiltin("quote", builtinQuote)
	e.registerBuiltin("unit", builtinUnit)

	// List operations (Quotations treated as lists).
	e.registerBuiltin("reverse", builtinReverse)
	e.registerBuiltin("nth", builtinNth)
	e.registerBuiltin("take", builtinTake)
	e.registerBuiltin("ldrop", builtinLdrop)
	e.registerBuiltin("lsplit", builtinLsplit)
	e.registerBuiltin("zip", builtinZip)
	e.registerBuiltin("zipwith", builtinZipwith)
	e.registerBuiltin("range", builtinRange)
	e.registerBuiltin("iota", builtinIota)
	e.registerBuiltin("flatten", builtinFlatten)
	e.registerBuiltin("any", builtinAny)
	e.registerBuiltin("all", builtinAll)
	e.registerBuiltin("find", builtinFind)
	e.registerBuiltin("index", builtinIndex)
	e.registerBuiltin("sort", builtinSort)
	e.registerBuiltin("last", builtinLast)

	// I/O.
	e.registerBuiltin(".", builtinPrintLn)
	e.registerBuiltin("print", builtinPrint)
	e.registerBuiltin("newline", builtinNewline)
	e.registerBuiltin("stack", builtinStack)

	// Error introspection.
	e.registerBuiltin("err?", builtinErrQ)
	e.registerBuiltin("errcode", builtinErrcode)
	e.registerBuiltin("clearerr", builtinClearerr)

	// Math. neg, abs, inc and dec keep the operand's numeric type; the
	// rest return Decimal, coercing Integer operands.
	e.registerBuiltin("neg", builtinNeg)
	e.registerBuiltin("abs", builtinAbs)
	e.registerBuiltin("inc", builtinInc)
	e.registerBuiltin("dec", builtinDec)
	e.registerBuiltin("sin", mathUnary(math.Sin))
	e.registerBuiltin("cos", mathUnary(math.Cos))
	e.registerBuiltin("tan", mathUnary(math.Tan))
	e.registerBuiltin("sqrt", mathUnary(math.Sqrt))
	e.registerBuiltin("exp", mathUnary(math.Exp))
	e.registerBuiltin("log", mathUnary(math.Log))
	e.registerBuiltin("floor", mathUnary(math.Floor))
	e.registerBuiltin("ceil", mathUnary(math.Ceil))
	e.registerBuiltin("round", mathUnary(math.Round))
	e.registerBuiltin("pow", builtinPow)
	e.registerBuiltin("min", builtinMin)
	e.registerBuiltin("max", builtinMax)
	e.registerBuiltin("clamp", builtinClamp)
	e.registerBuiltin("lerp", builtinLerp)
	e.registerBuiltin("sign", builtinSign)
	e.registerBuiltin("fract", builtinFract)
}

func builtinQuit(e *Evaluator) error { return joyerr.QuitRequested }

// === Stack shuffling ===

func builtinPop(e *Evaluator) error {
	_, err := e.Pop()
	return err
}

func builtinDup(e *Evaluator) error {
	v, err := e.Peek("dup")
	if err != nil {
		return err
	}
	e.Push(v)
	return nil
}

func builtinSwap(e *Evaluator) error {
	if len(e.Stack) < 2 {
		return e.setError(joyerr.NewUnderflowError("swap"))
	}
	n := len(e.Stack)
	e.Stack[n-1], e.Stack[n-2] = e.Stack[n-2], e.Stack[n-1]
	return nil
}

func builtinOver(e *Evaluator) error {
	v, err := e.PeekN("over", 1)
	if err != nil {
		return err
	}
	e.Push(v)
	return nil
}

func builtinRot(e *Evaluator) error {
	if len(e.Stack) < 3 {
		return e.setError(joyerr.NewUnderflowError("rot"))
	}
	n := len(e.Stack)
	a := e.Stack[n-3]
	e.Stack[n-3] = e.Stack[n-2]
	e.Stack[n-2] = e.Stack[n-1]
	e.Stack[n-1] = a
	return nil
}

func builtinNip(e *Evaluator) error {
	if len(e.Stack) < 2 {
		return e.setError(joyerr.NewUnderflowError("nip"))
	}
	n := len(e.Stack)
	e.Stack[n-2] = e.Stack[n-1]
	e.Stack = e.Stack[:n-1]
	return nil
}

func builtinTuck(e *Evaluator) error {
	if len(e.Stack) < 2 {
		return e.setError(joyerr.NewUnderflowError("tuck"))
	}
	if err := builtinSwap(e); err != nil {
		return err
	}
	return builtinOver(e)
}

func builtinDepth(e *Evaluator) error {
	e.Push(values.Integer(len(e.Stack)))
	return nil
}

// roll: n roll — bring the nth-from-top item (0 = top) to the top.
func builtinRoll(e *Evaluator) error {
	n, err := e.PopInteger("roll")
	if err != nil {
		return err
	}
	count := int(n)
	if count < 0 || count >= len(e.Stack) {
		return e.setError(joyerr.NewUnderflowError("roll"))
	}
	idx := len(e.Stack) - 1 - count
	item := e.Stack[idx]
	copy(e.Stack[idx:], e.Stack[idx+1:])
	e.Stack[len(e.Stack)-1] = item
	return nil
}

// unroll: n unroll — the inverse of roll, put the top at position n.
func builtinUnroll(e *Evaluator) error {
	n, err := e.PopInteger("unroll")
	if err != nil {
		return err
	}
	count := int(n)
	if count < 0 || count >= len(e.Stack) {
		return e.setError(joyerr.NewUnderflowError("unroll"))
	}
	top := e.Stack[len(e.Stack)-1]
	idx := len(e.Stack) - 1 - count
	copy(e.Stack[idx+1:], e.Stack[idx:len(e.Stack)-1])
	e.Stack[idx] = top
	return nil
}

// pick: n pick — copy the nth-from-top item (0 = top) to the top.
func builtinPick(e *Evaluator) error {
	n, err := e.PopInteger("pick")
	if err != nil {
		return err
	}
	v, err := e.PeekN("pick", int(n))
	if err != nil {
		return err
	}
	e.Push(v)
	return nil
}

// === Arithmetic ===

func arithDispatch(op string, a, b values.Value, onInt func(x, y int32) values.Value, onDec func(x, y float32) values.Value) (values.Value, error) {
	switch av := a.(type) {
	case values.Integer:
		bv, ok := b.(values.Integer)
		if !ok {
			return nil, joyerr.NewTypeError(op, "integer", b.Type())
		}
		return onInt(int32(av), int32(bv)), nil
	case values.Decimal:
		bv, ok := b.(values.Decimal)
		if !ok {
			return nil, joyerr.NewTypeError(op, "decimal", b.Type())
		}
		return onDec(float32(av), float32(bv)), nil
	default:
		return nil, joyerr.NewTypeError(op, "integer or decimal", a.Type())
	}
}

// popOperands pops b (top) then a (below), matching the "a b -> ..."
// notation used throughout the built-in catalogue.
func (e *Evaluator) popOperands(op string) (a, b values.Value, err error) {
	b, err = e.Pop()
	if err != nil {
		return nil, nil, err
	}
	a, err = e.Pop()
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func builtinAdd(e *Evaluator) error {
	a, b, err := e.popOperands("+")
	if err != nil {
		return err
	}
	v, err := arithDispatch("+", a, b,
		func(x, y int32) values.Value { return values.Integer(x + y) },
		func(x, y float32) values.Value { return values.Decimal(x + y) })
	if err != nil {
		return e.setError(err)
	}
	e.Push(v)
	return nil
}

func builtinSub(e *Evaluator) error {
	a, b, err := e.popOperands("-")
	if err != nil {
		return err
	}
	v, err := arithDispatch("-", a, b,
		func(x, y int32) values.Value { return values.Integer(x - y) },
		func(x, y float32) values.Value { return values.Decimal(x - y) })
	if err != nil {
		return e.setError(err)
	}
	e.Push(v)
	return nil
}

func builtinMul(e *Evaluator) error {
	a, b, err := e.popOperands("*")
	if err != nil {
		return err
	}
	v, err := arithDispatch("*", a, b,
		func(x, y int32) values.Value { return values.Integer(x * y) },
		func(x, y float32) values.Value { return values.Decimal(x * y) })
	if err != nil {
		return e.setError(err)
	}
	e.Push(v)
	return nil
}

// === Comparison ===

func builtinGT(e *Evaluator) error {
	a, b, err := e.popOperands(">")
	if err != nil {
		return err
	}
	v, err := arithDispatch(">", a, b,
		func(x, y int32) values.Value { return values.Boolean(x > y) },
		func(x, y float32) values.Value { return values.Boolean(x > y) })
	if err != nil {
		return e.setError(err)
	}
	e.Push(v)
	return nil
}

func builtinLT(e *Evaluator) error {
	a, b, err := e.popOperands("<")
	if err != nil {
		return err
	}
	v, err := arithDispatch("<", a, b,
		func(x, y int32) values.Value { return values.Boolean(x < y) },
		func(x, y float32) values.Value { return values.Boolean(x < y) })
	if err != nil {
		return e.setError(err)
	}
	e.Push(v)
	return nil
}

func builtinEQ(e *Evaluator) error {
	a, b, err := e.popOperands("=")
	if err != nil {
		return err
	}
	v, err := arithDispatch("=", a, b,
		func(x, y int32) values.Value { return values.Boolean(x == y) },
		func(x, y float32) values.Value { return values.Boolean(x == y) })
	if err != nil {
		return e.setError(err)
	}
	e.Push(v)
	return nil
}

func builtinLE(e *Evaluator) error {
	a, b, err := e.popOperands("<=")
	if err != nil {
		return err
	}
	v, err := arithDispatch("<=", a, b,
		func(x, y int32) values.Value { return values.Boolean(x <= y) },
		func(x, y float32) values.Value { return values.Boolean(x <= y) })
	if err != nil {
		return e.setError(err)
	}
	e.Push(v)
	return nil
}

func builtinGE(e *Evaluator) error {
	a, b, err := e.popOperands(">=")
	if err != nil {
		return err
	}
	v, err := arithDispatch(">=", a, b,
		func(x, y int32) values.Value { return values.Boolean(x >= y) },
		func(x, y float32) values.Value { return values.Boolean(x >= y) })
	if err != nil {
		return e.setError(err)
	}
	e.Push(v)
	return nil
}

func builtinNE(e *Evaluator) error {
	a, b, err := e.popOperands("!=")
	if err != nil {
		return err
	}
	v, err := arithDispatch("!=", a, b,
		func(x, y int32) values.Value { return values.Boolean(x != y) },
		func(x, y float32) values.Value { return values.Boolean(x != y) })
	if err != nil {
		return e.setError(err)
	}
	e.Push(v)
	return nil
}

// === Logic ===

func builtinAnd(e *Evaluator) error {
	b, err := e.PopBoolean("and")
	if err != nil {
		return err
	}
	a, err := e.PopBoolean("and")
	if err != nil {
		return err
	}
	e.Push(values.Boolean(a && b))
	return nil
}

func builtinOr(e *Evaluator) error {
	b, err := e.PopBoolean("or")
	if err != nil {
		return err
	}
	a, err := e.PopBoolean("or")
	if err != nil {
		return err
	}
	e.Push(values.Boolean(a || b))
	return nil
}

func builtinNot(e *Evaluator) error {
	a, err := e.PopBoolean("not")
	if err != nil {
		return err
	}
	e.Push(values.Boolean(!a))
	return nil
}

// === Type predicates ===

func typePredicate(check func(values.Value) bool) func(*Evaluator) error {
	return func(e *Evaluator) error {
		v, err := e.Pop()
		if err != nil {
			return err
		}
		e.Push(values.Boolean(check(v)))
		return nil
	}
}

var (
	builtinIsNumber = typePredicate(func(v values.Value) bool {
		switch v.(type) {
		case values.Integer, values.Decimal:
			return true
		default:
			return false
		}
	})
	builtinIsInteger = typePredicate(func(v values.Value) bool { _, ok := v.(values.Integer); return ok })
	builtinIsDecimal = typePredicate(func(v values.Value) bool { _, ok := v.(values.Decimal); return ok })
	builtinIsText    = typePredicate(func(v values.Value) bool { _, ok := v.(values.Text); return ok })
	builtinIsBoolean = typePredicate(func(v values.Value) bool { _, ok := v.(values.Boolean); return ok })
	builtinIsSymbol  = typePredicate(func(v values.Value) bool { _, ok := v.(values.Symbol); return ok })
	builtinIsQuotation = typePredicate(func(v values.Value) bool { _, ok := v.(*values.Quotation); return ok })
)

// === Quotation manipulation ===

func builtinConcat(e *Evaluator) error {
	q, err := e.PopQuotation("concat")
	if err != nil {
		return err
	}
	p, err := e.PopQuotation("concat")
	if err != nil {
		return err
	}
	items := make([]values.Value, 0, len(p.Items)+len(q.Items))
	items = append(items, p.Items...)
	items = append(items, q.Items...)
	e.Push(values.NewQuotation(items))
	return nil
}

func builtinRest(e *Evaluator) error {
	p, err := e.PopQuotation("rest")
	if err != nil {
		return err
	}
	if len(p.Items) == 0 {
		return e.setError(joyerr.NewTypeError("rest", "non-empty quotation", "empty quotation"))
	}
	e.Push(values.NewQuotation(p.Items[1:]))
	return nil
}

// size is non-destructive: the quotation stays, its length is pushed.
func builtinSize(e *Evaluator) error {
	v, err := e.Peek("size")
	if err != nil {
		return err
	}
	p, ok := v.(*values.Quotation)
	if !ok {
		return e.setError(joyerr.NewTypeError("size", "quotation", v.Type()))
	}
	e.Push(values.Integer(len(p.Items)))
	return nil
}

func builtinCons(e *Evaluator) error {
	p, err := e.PopQuotation("cons")
	if err != nil {
		return err
	}
	x, err := e.Pop()
	if err != nil {
		return err
	}
	items := make([]values.Value, 0, len(p.Items)+1)
	items = append(items, x)
	items = append(items, p.Items...)
	e.Push(values.NewQuotation(items))
	return nil
}

func builtinUncons(e *Evaluator) error {
	p, err := e.PopQuotation("uncons")
	if err != nil {
		return err
	}
	if len(p.Items) == 0 {
		return e.setError(joyerr.NewTypeError("uncons", "non-empty quotation", "empty quotation"))
	}
	e.Push(p.Items[0])
	e.Push(values.NewQuotation(p.Items[1:]))
	return nil
}

func builtinFirst(e *Evaluator) error {
	p, err := e.PopQuotation("first")
	if err != nil {
		return err
	}
	if len(p.Items) == 0 {
		return e.setError(joyerr.NewTypeError("first", "non-empty quotation", "empty quotation"))
	}
	e.Push(p.Items[0])
	return nil
}

func builtinIsNull(e *Evaluator) error {
	p, err := e.PopQuotation("null?")
	if err != nil {
		return err
	}
	e.Push(values.Boolean(len(p.Items) == 0))
	return nil
}

func builtinQuote(e *Evaluator) error {
	v, err := e.Pop()
	if err != nil {
		return err
	}
	e.Push(values.NewQuotation([]values.Value{v}))
	return nil
}

func builtinUnit(e *Evaluator) error { return builtinQuote(e) }

// === List operations ===

func builtinReverse(e *Evaluator) error {
	p, err := e.PopQuotation("reverse")
	if err != nil {
		return err
	}
	items := make([]values.Value, len(p.Items))
	for i, v := range p.Items {
		items[len(items)-1-i] = v
	}
	e.Push(values.NewQuotation(items))
	return nil
}

func builtinNth(e *Evaluator) error {
	n, err := e.PopInteger("nth")
	if err != nil {
		return err
	}
	p, err := e.PopQuotation("nth")
	if err != nil {
		return err
	}
	if int(n) < 0 || int(n) >= len(p.Items) {
		return e.setError(joyerr.NewTypeError("nth", "in-range index", "out-of-range index"))
	}
	e.Push(p.Items[n])
	return nil
}

func builtinTake(e *Evaluator) error {
	n, err := e.PopInteger("take")
	if err != nil {
		return err
	}
	p, err := e.PopQuotation("take")
	if err != nil {
		return err
	}
	count := int(n)
	if count < 0 || count > len(p.Items) {
		return e.setError(joyerr.NewTypeError("take", "in-range count", "out-of-range count"))
	}
	e.Push(values.NewQuotation(append([]values.Value{}, p.Items[:count]...)))
	return nil
}

func builtinLdrop(e *Evaluator) error {
	n, err := e.PopInteger("ldrop")
	if err != nil {
		return err
	}
	p, err := e.PopQuotation("ldrop")
	if err != nil {
		return err
	}
	count := int(n)
	if count < 0 || count > len(p.Items) {
		return e.setError(joyerr.NewTypeError("ldrop", "in-range count", "out-of-range count"))
	}
	e.Push(values.NewQuotation(append([]values.Value{}, p.Items[count:]...)))
	return nil
}

func builtinLsplit(e *Evaluator) error {
	n, err := e.PopInteger("lsplit")
	if err != nil {
		return err
	}
	p, err := e.PopQuotation("lsplit")
	if err != nil {
		return err
	}
	count := int(n)
	if count < 0 || count > len(p.Items) {
		return e.setError(joyerr.NewTypeError("lsplit", "in-range count", "out-of-range count"))
	}
	e.Push(values.NewQuotation(append([]values.Value{}, p.Items[:count]...)))
	e.Push(values.NewQuotation(append([]values.Value{}, p.Items[count:]...)))
	return nil
}

func builtinZip(e *Evaluator) error {
	q, err := e.PopQuotation("zip")
	if err != nil {
		return err
	}
	p, err := e.PopQuotation("zip")
	if err != nil {
		return err
	}
	n := len(p.Items)
	if len(q.Items) < n {
		n = len(q.Items)
	}
	items := make([]values.Value, n)
	for i := 0; i < n; i++ {
		items[i] = values.NewQuotation([]values.Value{p.Items[i], q.Items[i]})
	}
	e.Push(values.NewQuotation(items))
	return nil
}

func builtinZipwith(e *Evaluator) error {
	fn, err := e.PopQuotation("zipwith")
	if err != nil {
		return err
	}
	q, err := e.PopQuotation("zipwith")
	if err != nil {
		return err
	}
	p, err := e.PopQuotation("zipwith")
	if err != nil {
		return err
	}
	n := len(p.Items)
	if len(q.Items) < n {
		n = len(q.Items)
	}
	results := make([]values.Value, 0, n)
	saved := e.Stack
	for i := 0; i < n; i++ {
		if !e.consumeGas() {
			e.Stack = saved
			return e.ARegister
		}
		e.Stack = []values.Value{p.Items[i], q.Items[i]}
		if err := e.execProgram(cloneValues(fn.Items)); err != nil {
			e.Stack = saved
			return err
		}
		if len(e.Stack) == 0 {
			e.Stack = saved
			return e.setError(joyerr.NewUnderflowError("zipwith"))
		}
		results = append(results, e.Stack[len(e.Stack)-1])
	}
	e.Stack = saved
	e.Push(values.NewQuotation(results))
	return nil
}

func builtinRange(e *Evaluator) error {
	hi, err := e.PopInteger("range")
	if err != nil {
		return err
	}
	lo, err := e.PopInteger("range")
	if err != nil {
		return err
	}
	var items []values.Value
	for n := lo; n < hi; n++ {
		items = append(items, values.Integer(n))
	}
	e.Push(values.NewQuotation(items))
	return nil
}

func builtinIota(e *Evaluator) error {
	n, err := e.PopInteger("iota")
	if err != nil {
		return err
	}
	items := make([]values.Value, 0, n)
	for i := values.Integer(0); i < n; i++ {
		items = append(items, i)
	}
	e.Push(values.NewQuotation(items))
	return nil
}

func builtinFlatten(e *Evaluator) error {
	p, err := e.PopQuotation("flatten")
	if err != nil {
		return err
	}
	var items []values.Value
	for _, v := range p.Items {
		if inner, ok := v.(*values.Quotation); ok {
			items = append(items, inner.Items...)
		} else {
			items = append(items, v)
		}
	}
	e.Push(values.NewQuotation(items))
	return nil
}

func (e *Evaluator) runPredicate(op string, fn *values.Quotation, x values.Value) (bool, error) {
	saved := e.Stack
	e.Stack = []values.Value{x}
	if err := e.execProgram(cloneValues(fn.Items)); err != nil {
		e.Stack = saved
		return false, err
	}
	b, err := e.PopBoolean(op)
	e.Stack = saved
	return bool(b), err
}

func builtinAny(e *Evaluator) error {
	pred, err := e.PopQuotation("any")
	if err != nil {
		return err
	}
	p, err := e.PopQuotation("any")
	if err != nil {
		return err
	}
	for _, x := range p.Items {
		ok, err := e.runPredicate("any", pred, x)
		if err != nil {
			return err
		}
		if ok {
			e.Push(values.Boolean(true))
			return nil
		}
	}
	e.Push(values.Boolean(false))
	return nil
}

func builtinAll(e *Evaluator) error {
	pred, err := e.PopQuotation("all")
	if err != nil {
		return err
	}
	p, err := e.PopQuotation("all")
	if err != nil {
		return err
	}
	for _, x := range p.Items {
		ok, err := e.runPredicate("all", pred, x)
		if err != nil {
			return err
		}
		if !ok {
			e.Push(values.Boolean(false))
			return nil
		}
	}
	e.Push(values.Boolean(true))
	return nil
}

func builtinFind(e *Evaluator) error {
	pred, err := e.PopQuotation("find")
	if err != nil {
		return err
	}
	p, err := e.PopQuotation("find")
	if err != nil {
		return err
	}
	for _, x := range p.Items {
		ok, err := e.runPredicate("find", pred, x)
		if err != nil {
			return err
		}
		if ok {
			e.Push(x)
			return nil
		}
	}
	return e.setError(joyerr.NewTypeError("find", "a matching element", "no match"))
}

func builtinIndex(e *Evaluator) error {
	pred, err := e.PopQuotation("index")
	if err != nil {
		return err
	}
	p, err := e.PopQuotation("index")
	if err != nil {
		return err
	}
	for i, x := range p.Items {
		ok, err := e.runPredicate("index", pred, x)
		if err != nil {
			return err
		}
		if ok {
			e.Push(values.Integer(i))
			return nil
		}
	}
	e.Push(values.Integer(-1))
	return nil
}

func builtinSort(e *Evaluator) error {
	p, err := e.PopQuotation("sort")
	if err != nil {
		return err
	}
	items := append([]values.Value{}, p.Items...)
	var sortErr error
	less := func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		a, err := numericLess(items[i], items[j])
		if err != nil {
			sortErr = err
			return false
		}
		return a
	}
	insertionSort(items, less)
	if sortErr != nil {
		return e.setError(sortErr)
	}
	e.Push(values.NewQuotation(items))
	return nil
}

func numericLess(a, b values.Value) (bool, error) {
	switch av := a.(type) {
	case values.Integer:
		bv, ok := b.(values.Integer)
		if !ok {
			return false, joyerr.NewTypeError("sort", "integer", b.Type())
		}
		return av < bv, nil
	case values.Decimal:
		bv, ok := b.(values.Decimal)
		if !ok {
			return false, joyerr.NewTypeError("sort", "decimal", b.Type())
		}
		return av < bv, nil
	default:
		return false, joyerr.NewTypeError("sort", "integer or decimal", a.Type())
	}
}

// insertionSort avoids pulling in "sort" purely to sort small
// quotations; stable and simple enough that a wrong comparator
// (non-numeric elements) surfaces as sortErr rather than panicking.
func insertionSort(items []values.Value, less func(i, j int) bool) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

func builtinLast(e *Evaluator) error {
	p, err := e.PopQuotation("last")
	if err != nil {
		return err
	}
	if len(p.Items) == 0 {
		return e.setError(joyerr.NewTypeError("last", "non-empty quotation", "empty quotation"))
	}
	e.Push(p.Items[len(p.Items)-1])
	return nil
}

// === I/O ===

func builtinPrintLn(e *Evaluator) error {
	v, err := e.Pop()
	if err != nil {
		return err
	}
	fmt.Fprintln(e.Output, v.String())
	return nil
}

func builtinPrint(e *Evaluator) error {
	v, err := e.Pop()
	if err != nil {
		return err
	}
	fmt.Fprint(e.Output, v.String())
	return nil
}

func builtinNewline(e *Evaluator) error {
	fmt.Fprintln(e.Output)
	return nil
}

func builtinStack(e *Evaluator) error {
	fmt.Fprintln(e.Output, e.StackString())
	return nil
}

// === Error introspection ===

func builtinErrQ(e *Evaluator) error {
	errored := e.CFlag
	e.Push(values.Boolean(errored))
	return nil
}

func builtinErrcode(e *Evaluator) error {
	if e.ARegister == nil {
		e.Push(values.Text(""))
		return nil
	}
	e.Push(values.Text(e.ARegister.Error()))
	return nil
}

func builtinClearerr(e *Evaluator) error {
	e.ClearError()
	return nil
}

// === Math ===

func mathUnary(fn func(float64) float64) func(*Evaluator) error {
	return func(e *Evaluator) error {
		x, err := e.popNumeric("math")
		if err != nil {
			return err
		}
		e.Push(values.Decimal(fn(float64(x))))
		return nil
	}
}

func builtinNeg(e *Evaluator) error {
	v, err := e.Pop()
	if err != nil {
		return err
	}
	switch n := v.(type) {
	case values.Integer:
		e.Push(-n)
	case values.Decimal:
		e.Push(-n)
	default:
		return e.setError(joyerr.NewTypeError("neg", "integer or decimal", v.Type()))
	}
	return nil
}

func builtinAbs(e *Evaluator) error {
	v, err := e.Pop()
	if err != nil {
		return err
	}
	switch n := v.(type) {
	case values.Integer:
		if n < 0 {
			n = -n
		}
		e.Push(n)
	case values.Decimal:
		e.Push(values.Decimal(math.Abs(float64(n))))
	default:
		return e.setError(joyerr.NewTypeError("abs", "integer or decimal", v.Type()))
	}
	return nil
}

func builtinInc(e *Evaluator) error {
	v, err := e.Pop()
	if err != nil {
		return err
	}
	switch n := v.(type) {
	case values.Integer:
		e.Push(n + 1)
	case values.Decimal:
		e.Push(n + 1)
	default:
		return e.setError(joyerr.NewTypeError("inc", "integer or decimal", v.Type()))
	}
	return nil
}

func builtinDec(e *Evaluator) error {
	v, err := e.Pop()
	if err != nil {
		return err
	}
	switch n := v.(type) {
	case values.Integer:
		e.Push(n - 1)
	case values.Decimal:
		e.Push(n - 1)
	default:
		return e.setError(joyerr.NewTypeError("dec", "integer or decimal", v.Type()))
	}
	return nil
}

func builtinPow(e *Evaluator) error {
	y, err := e.popNumeric("pow")
	if err != nil {
		return err
	}
	x, err := e.popNumeric("pow")
	if err != nil {
		return err
	}
	e.Push(values.Decimal(math.Pow(float64(x), float64(y))))
	return nil
}

func builtinMin(e *Evaluator) error {
	b, err := e.popNumeric("min")
	if err != nil {
		return err
	}
	a, err := e.popNumeric("min")
	if err != nil {
		return err
	}
	e.Push(values.Decimal(math.Min(float64(a), float64(b))))
	return nil
}

func builtinMax(e *Evaluator) error {
	b, err := e.popNumeric("max")
	if err != nil {
		return err
	}
	a, err := e.popNumeric("max")
	if err != nil {
		return err
	}
	e.Push(values.Decimal(math.Max(float64(a), float64(b))))
	return nil
}

func builtinClamp(e *Evaluator) error {
	hi, err := e.popNumeric("clamp")
	if err != nil {
		return err
	}
	lo, err := e.popNumeric("clamp")
	if err != nil {
		return err
	}
	x, err := e.popNumeric("clamp")
	if err != nil {
		return err
	}
	v := float64(x)
	if v < float64(lo) {
		v = float64(lo)
	}
	if v > float64(hi) {
		v = float64(hi)
	}
	e.Push(values.Decimal(v))
	return nil
}

func builtinLerp(e *Evaluator) error {
	t, err := e.popNumeric("lerp")
	if err != nil {
		return err
	}
	b, err := e.popNumeric("lerp")
	if err != nil {
		return err
	}
	a, err := e.popNumeric("lerp")
	if err != nil {
		return err
	}
	e.Push(values.Decimal(float64(a) + float64(t)*(float64(b)-float64(a))))
	return nil
}

func builtinSign(e *Evaluator) error {
	x, err := e.popNumeric("sign")
	if err != nil {
		return err
	}
	switch {
	case x > 0:
		e.Push(values.Decimal(1))
	case x < 0:
		e.Push(values.Decimal(-1))
	default:
		e.Push(values.Decimal(0))
	}
	return nil
}

func builtinFract(e *Evaluator) error {
	x, err := e.popNumeric("fract")
	if err != nil {
		return err
	}
	_, frac := math.Modf(float64(x))
	e.Push(values.Decimal(frac))
	return nil
}
