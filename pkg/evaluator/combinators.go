package evaluator

import (
	"errors"

	"github.com/psil-lang/joy/pkg/joyerr"
	"github.com/psil-lang/joy/pkg/values"
)

// registerCombinators installs every builtin that re-enters the
// evaluator with a derived program, a cloned predicate, or a
// temporary sub-stack.
func (e *Evaluator) registerCombinators() {
	e.registerBuiltin("i", builtinI)
	e.registerBuiltin("dip", builtinDip)
	e.registerBuiltin("ifte", builtinIfte)
	e.registerBuiltin("if", builtinIf)
	e.registerBuiltin("choice", builtinChoice)

	e.registerBuiltin("linrec", builtinLinrec)
	e.registerBuiltin("binrec", builtinBinrec)
	e.registerBuiltin("tailrec", builtinTailrec)

	e.registerBuiltin("times", builtinTimes)
	e.registerBuiltin("while", builtinWhile)
	e.registerBuiltin("loop", builtinLoop)

	e.registerBuiltin("map", builtinMap)
	e.registerBuiltin("filter", builtinFilter)
	e.registerBuiltin("fold", builtinFold)
	e.registerBuiltin("each", builtinEach)
	e.registerBuiltin("step", builtinEach)

	e.registerBuiltin("cleave", builtinCleave)
	e.registerBuiltin("spread", builtinSpread)
	e.registerBuiltin("apply", builtinApply)

	e.registerBuiltin("onerr", builtinOnerr)
	e.registerBuiltin("try", builtinTry)
}

// i pops a Quotation and runs its contents now, against the current
// stack — equivalent to splicing them at the head of the pending
// program, since nothing downstream distinguishes the two.
func builtinI(e *Evaluator) error {
	q, err := e.PopQuotation("i")
	if err != nil {
		return err
	}
	return e.execProgram(q.Clone().Items)
}

// dip: x p → run p with x hidden below it, then restore x on top.
func builtinDip(e *Evaluator) error {
	p, err := e.PopQuotation("dip")
	if err != nil {
		return err
	}
	x, err := e.Pop()
	if err != nil {
		return err
	}
	if err := e.execProgram(cloneValues(p.Items)); err != nil {
		return err
	}
	e.Push(x)
	return nil
}

// runPredicateOnCopy evaluates cond against a copy of the stack so
// the real stack never observes the predicate's side effects, and
// returns the Boolean it left on top of that copy.
func (e *Evaluator) runPredicateOnCopy(op string, cond *values.Quotation) (bool, error) {
	real := e.Stack
	e.Stack = cloneStack(real)
	err := e.execProgram(cloneValues(cond.Items))
	if err != nil {
		e.Stack = real
		return false, err
	}
	b, err := e.PopBoolean(op)
	e.Stack = real
	return bool(b), err
}

// ifte: c t e → evaluate c against a stack copy; if its result is
// true, run t against the real stack, else run e.
func builtinIfte(e *Evaluator) error {
	elseQ, err := e.PopQuotation("ifte")
	if err != nil {
		return err
	}
	thenQ, err := e.PopQuotation("ifte")
	if err != nil {
		return err
	}
	condQ, err := e.PopQuotation("ifte")
	if err != nil {
		return err
	}
	result, err := e.runPredicateOnCopy("ifte", condQ)
	if err != nil {
		return err
	}
	if result {
		return e.execProgram(cloneValues(thenQ.Items))
	}
	return e.execProgram(cloneValues(elseQ.Items))
}

// if: c t → one-armed ifte, doing nothing when c is false.
func builtinIf(e *Evaluator) error {
	thenQ, err := e.PopQuotation("if")
	if err != nil {
		return err
	}
	condQ, err := e.PopQuotation("if")
	if err != nil {
		return err
	}
	result, err := e.runPredicateOnCopy("if", condQ)
	if err != nil {
		return err
	}
	if result {
		return e.execProgram(cloneValues(thenQ.Items))
	}
	return nil
}

// choice: a b flag choice → a if flag else b. Pure value selection,
// no quotation is executed.
func builtinChoice(e *Evaluator) error {
	flag, err := e.PopBoolean("choice")
	if err != nil {
		return err
	}
	b, err := e.Pop()
	if err != nil {
		return err
	}
	a, err := e.Pop()
	if err != nil {
		return err
	}
	if flag {
		e.Push(a)
	} else {
		e.Push(b)
	}
	return nil
}

// linrec: p t r1 r2 linrec — if p, run t; else run r1, recurse, run r2.
func builtinLinrec(e *Evaluator) error {
	r2, err := e.PopQuotation("linrec")
	if err != nil {
		return err
	}
	r1, err := e.PopQuotation("linrec")
	if err != nil {
		return err
	}
	t, err := e.PopQuotation("linrec")
	if err != nil {
		return err
	}
	p, err := e.PopQuotation("linrec")
	if err != nil {
		return err
	}
	return e.linrec(p, t, r1, r2)
}

func (e *Evaluator) linrec(p, t, r1, r2 *values.Quotation) error {
	if !e.consumeGas() {
		return e.ARegister
	}
	done, err := e.runPredicateOnCopy("linrec", p)
	if err != nil {
		return err
	}
	if done {
		return e.execProgram(cloneValues(t.Items))
	}
	if err := e.execProgram(cloneValues(r1.Items)); err != nil {
		return err
	}
	if err := e.linrec(p, t, r1, r2); err != nil {
		return err
	}
	return e.execProgram(cloneValues(r2.Items))
}

// binrec: like linrec, but r1 splits the problem into two values and
// r2 combines the two recursive results.
func builtinBinrec(e *Evaluator) error {
	r2, err := e.PopQuotation("binrec")
	if err != nil {
		return err
	}
	r1, err := e.PopQuotation("binrec")
	if err != nil {
		return err
	}
	t, err := e.PopQuotation("binrec")
	if err != nil {
		return err
	}
	p, err := e.PopQuotation("binrec")
	if err != nil {
		return err
	}
	return e.binrec(p, t, r1, r2)
}

func (e *Evaluator) binrec(p, t, r1, r2 *values.Quotation) error {
	if !e.consumeGas() {
		return e.ARegister
	}
	done, err := e.runPredicateOnCopy("binrec", p)
	if err != nil {
		return err
	}
	if done {
		return e.execProgram(cloneValues(t.Items))
	}
	if err := e.execProgram(cloneValues(r1.Items)); err != nil {
		return err
	}
	second, err := e.Pop()
	if err != nil {
		return err
	}
	if err := e.binrec(p, t, r1, r2); err != nil {
		return err
	}
	e.Push(second)
	if err := e.binrec(p, t, r1, r2); err != nil {
		return err
	}
	return e.execProgram(cloneValues(r2.Items))
}

// tailrec: p t r tailrec — if p, run t and stop; else run r and loop.
func builtinTailrec(e *Evaluator) error {
	r, err := e.PopQuotation("tailrec")
	if err != nil {
		return err
	}
	t, err := e.PopQuotation("tailrec")
	if err != nil {
		return err
	}
	p, err := e.PopQuotation("tailrec")
	if err != nil {
		return err
	}
	for {
		if !e.consumeGas() {
			return e.ARegister
		}
		done, err := e.runPredicateOnCopy("tailrec", p)
		if err != nil {
			return err
		}
		if done {
			return e.execProgram(cloneValues(t.Items))
		}
		if err := e.execProgram(cloneValues(r.Items)); err != nil {
			return err
		}
	}
}

// times: n p times — run p n times.
func builtinTimes(e *Evaluator) error {
	p, err := e.PopQuotation("times")
	if err != nil {
		return err
	}
	n, err := e.PopInteger("times")
	if err != nil {
		return err
	}
	for j := values.Integer(0); j < n; j++ {
		if !e.consumeGas() {
			return e.ARegister
		}
		if err := e.execProgram(cloneValues(p.Items)); err != nil {
			return err
		}
	}
	return nil
}

// while: cond body while — run body while cond (checked on a stack
// copy each iteration) is true.
func builtinWhile(e *Evaluator) error {
	body, err := e.PopQuotation("while")
	if err != nil {
		return err
	}
	cond, err := e.PopQuotation("while")
	if err != nil {
		return err
	}
	for {
		if !e.consumeGas() {
			return e.ARegister
		}
		keepGoing, err := e.runPredicateOnCopy("while", cond)
		if err != nil {
			return err
		}
		if !keepGoing {
			return nil
		}
		if err := e.execProgram(cloneValues(body.Items)); err != nil {
			return err
		}
	}
}

// loop: body loop — run body until it errors or gas runs out.
func builtinLoop(e *Evaluator) error {
	body, err := e.PopQuotation("loop")
	if err != nil {
		return err
	}
	for {
		if !e.consumeGas() {
			return e.ARegister
		}
		if err := e.execProgram(cloneValues(body.Items)); err != nil {
			return err
		}
	}
}

// map: xs p → run p on a fresh sub-stack seeded with each element of
// xs in turn, collecting the top of that sub-stack afterwards.
func builtinMap(e *Evaluator) error {
	p, err := e.PopQuotation("map")
	if err != nil {
		return err
	}
	xs, err := e.PopQuotation("map")
	if err != nil {
		return err
	}
	results := make([]values.Value, 0, len(xs.Items))
	real := e.Stack
	for _, x := range xs.Items {
		if !e.consumeGas() {
			e.Stack = real
			return e.ARegister
		}
		e.Stack = []values.Value{x}
		if err := e.execProgram(cloneValues(p.Items)); err != nil {
			e.Stack = real
			return err
		}
		if len(e.Stack) == 0 {
			e.Stack = real
			return e.setError(joyerr.NewUnderflowError("map"))
		}
		results = append(results, e.Stack[len(e.Stack)-1])
	}
	e.Stack = real
	e.Push(values.NewQuotation(results))
	return nil
}

// filter: xs p → push each x onto the main stack, run p, require a
// Boolean on top; keep x when it is true. Per the language's
// definition filter is NOT stack-isolated the way map is.
func builtinFilter(e *Evaluator) error {
	p, err := e.PopQuotation("filter")
	if err != nil {
		return err
	}
	xs, err := e.PopQuotation("filter")
	if err != nil {
		return err
	}
	var kept []values.Value
	for _, x := range xs.Items {
		if !e.consumeGas() {
			return e.ARegister
		}
		e.Push(x)
		if err := e.execProgram(cloneValues(p.Items)); err != nil {
			return err
		}
		keep, err := e.PopBoolean("filter")
		if err != nil {
			return err
		}
		if keep {
			kept = append(kept, x)
		}
	}
	e.Push(values.NewQuotation(kept))
	return nil
}

// fold: xs init p → build the program (init, then x1, p's body, x2,
// p's body, ...) and run it once against the main stack.
func builtinFold(e *Evaluator) error {
	p, err := e.PopQuotation("fold")
	if err != nil {
		return err
	}
	init, err := e.Pop()
	if err != nil {
		return err
	}
	xs, err := e.PopQuotation("fold")
	if err != nil {
		return err
	}
	program := make([]values.Value, 0, 1+len(xs.Items)*(1+len(p.Items)))
	program = append(program, init)
	for _, x := range xs.Items {
		program = append(program, x)
		program = append(program, p.Items...)
	}
	return e.execProgram(cloneValues(program))
}

// each: xs p → run p once per element against the main stack,
// keeping no results.
func builtinEach(e *Evaluator) error {
	p, err := e.PopQuotation("each")
	if err != nil {
		return err
	}
	xs, err := e.PopQuotation("each")
	if err != nil {
		return err
	}
	for _, x := range xs.Items {
		if !e.consumeGas() {
			return e.ARegister
		}
		e.Push(x)
		if err := e.execProgram(cloneValues(p.Items)); err != nil {
			return err
		}
	}
	return nil
}

// cleave: x q1 q2 ... cleave (quotations wrapped in one Quotation) —
// run every sub-quotation against the same x, each pushing its result.
func builtinCleave(e *Evaluator) error {
	qs, err := e.PopQuotation("cleave")
	if err != nil {
		return err
	}
	x, err := e.Pop()
	if err != nil {
		return err
	}
	for _, qv := range qs.Items {
		q, ok := qv.(*values.Quotation)
		if !ok {
			return e.setError(joyerr.NewTypeError("cleave", "quotation", qv.Type()))
		}
		e.Push(x)
		if err := e.execProgram(cloneValues(q.Items)); err != nil {
			return err
		}
	}
	return nil
}

// spread: x1 .. xn [q1 .. qn] spread — run qk against xk for each k.
func builtinSpread(e *Evaluator) error {
	qs, err := e.PopQuotation("spread")
	if err != nil {
		return err
	}
	n := len(qs.Items)
	if len(e.Stack) < n {
		return e.setError(joyerr.NewUnderflowError("spread"))
	}
	operands := make([]values.Value, n)
	for j := n - 1; j >= 0; j-- {
		v, err := e.Pop()
		if err != nil {
			return err
		}
		operands[j] = v
	}
	for j, qv := range qs.Items {
		q, ok := qv.(*values.Quotation)
		if !ok {
			return e.setError(joyerr.NewTypeError("spread", "quotation", qv.Type()))
		}
		e.Push(operands[j])
		if err := e.execProgram(cloneValues(q.Items)); err != nil {
			return err
		}
	}
	return nil
}

// apply: args p → push every element of args, then run p.
func builtinApply(e *Evaluator) error {
	p, err := e.PopQuotation("apply")
	if err != nil {
		return err
	}
	args, err := e.PopQuotation("apply")
	if err != nil {
		return err
	}
	for _, a := range args.Items {
		e.Push(a)
	}
	return e.execProgram(cloneValues(p.Items))
}

// onerr: body handler onerr — run body in isolation; if it errors,
// clear the error register and run handler with nothing pushed for
// it. Quieter than try, which hands the handler the error message:
// onerr is for a recovery that doesn't care what went wrong.
func builtinOnerr(e *Evaluator) error {
	handler, err := e.PopQuotation("onerr")
	if err != nil {
		return err
	}
	body, err := e.PopQuotation("onerr")
	if err != nil {
		return err
	}
	bodyErr := e.execProgram(cloneValues(body.Items))
	if errors.Is(bodyErr, joyerr.QuitRequested) {
		return bodyErr
	}
	if bodyErr == nil && !e.CFlag {
		return nil
	}
	e.ClearError()
	return e.execProgram(cloneValues(handler.Items))
}

// try: body handler try — run body; if it errors, clear the error,
// push its message, and run handler instead.
func builtinTry(e *Evaluator) error {
	handler, err := e.PopQuotation("try")
	if err != nil {
		return err
	}
	body, err := e.PopQuotation("try")
	if err != nil {
		return err
	}
	bodyErr := e.execProgram(cloneValues(body.Items))
	if errors.Is(bodyErr, joyerr.QuitRequested) {
		return bodyErr
	}
	if bodyErr == nil && !e.CFlag {
		return nil
	}
	msg := ""
	if e.ARegister != nil {
		msg = e.ARegister.Error()
	} else if bodyErr != nil {
		msg = bodyErr.Error()
	}
	e.ClearError()
	e.Push(values.Text(msg))
	return e.execProgram(cloneValues(handler.Items))
}
