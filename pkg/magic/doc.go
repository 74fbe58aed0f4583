/*
Package magic translates notebook cells into the magic directives understood by
the remote session's command interpreter.

A cell whose first line is a registered sub-language tag, written with either a
single or a double marker, is routed to that sub-language:

	%sql select * from tables      ->  %%spark -c sql
	%%hive                             select * from tables
	select * from tables

Everything else is forwarded verbatim to the default session language:

	print(1)                       ->  %%spark
	                                   print(1)

The package also builds the fixed bootstrap and cleanup directives.
*/
package magic
